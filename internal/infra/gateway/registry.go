// File: internal/infra/gateway/registry.go
package gateway

import (
	"context"

	"creator-payments/internal/domain"
	"creator-payments/internal/domain/model"
	"creator-payments/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.GatewayRegistry = (*Registry)(nil)

// SelectionEntry is one gateway option shown to a buyer. Card drivers are
// collapsed into a single synthetic "cc" entry so individual card processors
// are never exposed; its name is left for the presentation layer.
type SelectionEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SelectionCC is the id of the synthetic card entry.
const SelectionCC = "cc"

// Registry holds the drivers enabled for this process, in configured order.
// Built once at startup; immutable afterwards.
type Registry struct {
	ordered []adapter.GatewayDriver
	byID    map[string]adapter.GatewayDriver
	cc      adapter.CardDriver
}

func NewRegistry(drivers ...adapter.GatewayDriver) *Registry {
	r := &Registry{byID: make(map[string]adapter.GatewayDriver, len(drivers))}
	for _, d := range drivers {
		if _, dup := r.byID[d.ID()]; dup {
			continue
		}
		r.ordered = append(r.ordered, d)
		r.byID[d.ID()] = d
		if cd, ok := d.(adapter.CardDriver); ok && d.IsCard() && r.cc == nil {
			r.cc = cd
		}
	}
	return r
}

func (r *Registry) Enabled() []adapter.GatewayDriver { return r.ordered }

func (r *Registry) Driver(id string) (adapter.GatewayDriver, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (r *Registry) CCDriver() adapter.CardDriver { return r.cc }

// Selection lists the gateway choices for a purchase: every non-card enabled
// driver, plus one "cc" entry iff a card driver is configured.
func (r *Registry) Selection() []SelectionEntry {
	out := make([]SelectionEntry, 0, len(r.ordered))
	for _, d := range r.ordered {
		if d.IsCard() {
			continue
		}
		out = append(out, SelectionEntry{ID: d.ID(), Name: d.Name()})
	}
	if r.cc != nil {
		out = append(out, SelectionEntry{ID: SelectionCC, Name: ""})
	}
	return out
}

// ProcessPayment finalizes money movement through the driver recorded on the
// payment at creation time.
func (r *Registry) ProcessPayment(ctx context.Context, p *model.Payment) (adapter.Response, error) {
	d, err := r.Driver(p.Gateway)
	if err != nil {
		return nil, err
	}
	return d.ProcessPayment(ctx, p)
}
