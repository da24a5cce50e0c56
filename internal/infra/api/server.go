// File: internal/infra/api/server.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"creator-payments/internal/domain"
	"creator-payments/internal/domain/model"
	"creator-payments/internal/domain/ports/adapter"
	"creator-payments/internal/infra/gateway"
	"creator-payments/internal/infra/logging"
	"creator-payments/internal/infra/redis"
	"creator-payments/internal/usecase"
)

// RateLimiter bounds purchase attempts; backed by redis in production.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Server binds the payment core's operations to HTTP.
type Server struct {
	pricingUC usecase.PricingUseCase
	paymentUC usecase.PaymentUseCase
	methodUC  usecase.MethodUseCase
	bundleUC  usecase.BundleUseCase
	userUC    usecase.UserUseCase
	registry  *gateway.Registry
	limiter   RateLimiter
	rateLimit int
	rateWin   time.Duration
	log       *zerolog.Logger
}

func NewServer(
	pricingUC usecase.PricingUseCase,
	paymentUC usecase.PaymentUseCase,
	methodUC usecase.MethodUseCase,
	bundleUC usecase.BundleUseCase,
	userUC usecase.UserUseCase,
	registry *gateway.Registry,
	limiter RateLimiter,
	rateLimit int,
	rateWin time.Duration,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		pricingUC: pricingUC,
		paymentUC: paymentUC,
		methodUC:  methodUC,
		bundleUC:  bundleUC,
		userUC:    userUC,
		registry:  registry,
		limiter:   limiter,
		rateLimit: rateLimit,
		rateWin:   rateWin,
		log:       logger,
	}
}

// RegisterRoutes mounts the payment API. Everything is session-guarded except
// the gateway callback, which gateways call server-to-server.
func (s *Server) RegisterRoutes(r chi.Router, guard *Guard) {
	r.Route("/api/v1/payment", func(r chi.Router) {
		r.Method(http.MethodPost, "/process/{gateway}", http.HandlerFunc(s.handleProcess))
		r.Method(http.MethodGet, "/process/{gateway}", http.HandlerFunc(s.handleProcess))

		r.Group(func(r chi.Router) {
			r.Use(guard.Middleware)
			r.Get("/gateways", s.handleGateways)
			r.Post("/", s.handlePurchase)
			r.Put("/price", s.handlePrice)

			r.Get("/method", s.handleMethodList)
			r.Post("/method", s.handleMethodCreate)
			r.Post("/method/{id}/main", s.handleMethodMain)
			r.Delete("/method/{id}", s.handleMethodDelete)

			r.Post("/bundle", s.handleBundleUpsert)
			r.Delete("/bundle/{id}", s.handleBundleDelete)
		})
	})
}

func (s *Server) handleGateways(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"gateways": s.registry.Selection()})
}

type purchaseRequest struct {
	Gateway   string `json:"gateway"`
	Type      string `json:"type"`
	SubID     string `json:"sub_id"`
	PostID    string `json:"post_id"`
	MessageID string `json:"message_id"`
	BundleID  string `json:"bundle_id"`
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	userID := logging.UserID(r.Context())

	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), redis.PurchaseKey(userID), s.rateLimit, s.rateWin)
		switch {
		case err != nil:
			// Fail open: an unavailable limiter must not block purchases.
			logging.With(r.Context(), s.log).Warn().Err(err).Msg("rate limiter unavailable")
		case !ok:
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	typ := model.PaymentType(req.Type)
	refs := usecase.PurchaseRefs{
		SubID:     req.SubID,
		PostID:    req.PostID,
		MessageID: req.MessageID,
		BundleID:  req.BundleID,
	}
	resolved, err := s.pricingUC.ResolvePurchase(r.Context(), userID, typ, refs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	_, resp, err := s.paymentUC.CreateAndDispatch(r.Context(), userID, typ, req.Gateway, resolved)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	gatewayID := chi.URLParam(r, "gateway")

	cb := callbackFromRequest(r)
	_, resp, err := s.paymentUC.ConfirmFromCallback(r.Context(), gatewayID, cb)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := map[string]any{"status": true}
	for k, v := range resp {
		out[k] = v
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Price int64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	user, err := s.userUC.SetPrice(r.Context(), logging.UserID(r.Context()), req.Price)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleMethodList(w http.ResponseWriter, r *http.Request) {
	methods, err := s.methodUC.List(r.Context(), logging.UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"methods": methods})
}

type methodCreateRequest struct {
	Title  string `json:"title"`
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
	Holder string `json:"holder"`
}

func (s *Server) handleMethodCreate(w http.ResponseWriter, r *http.Request) {
	var req methodCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	input := map[string]string{
		"number": req.Number,
		"expiry": req.Expiry,
		"cvc":    req.CVC,
		"holder": req.Holder,
	}
	m, err := s.methodUC.Create(r.Context(), logging.UserID(r.Context()), input, req.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMethodMain(w http.ResponseWriter, r *http.Request) {
	methods, err := s.methodUC.SetMain(r.Context(), chi.URLParam(r, "id"), logging.UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"methods": methods})
}

func (s *Server) handleMethodDelete(w http.ResponseWriter, r *http.Request) {
	methods, err := s.methodUC.Delete(r.Context(), chi.URLParam(r, "id"), logging.UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"methods": methods})
}

type bundleUpsertRequest struct {
	Months   int `json:"months"`
	Discount int `json:"discount"`
}

func (s *Server) handleBundleUpsert(w http.ResponseWriter, r *http.Request) {
	var req bundleUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	bundles, err := s.bundleUC.Upsert(r.Context(), logging.UserID(r.Context()), req.Months, req.Discount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bundles": bundles})
}

func (s *Server) handleBundleDelete(w http.ResponseWriter, r *http.Request) {
	bundles, err := s.bundleUC.Delete(r.Context(), chi.URLParam(r, "id"), logging.UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bundles": bundles})
}

// callbackFromRequest flattens query and form params plus headers into the
// driver-facing callback shape.
func callbackFromRequest(r *http.Request) *adapter.CallbackRequest {
	_ = r.ParseForm()
	params := make(map[string]string, len(r.Form))
	for k := range r.Form {
		params[k] = r.Form.Get(k)
	}
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	return &adapter.CallbackRequest{Params: params, Headers: headers}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrSelfPurchase):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrUnprocessable),
		errors.Is(err, domain.ErrGatewayDisabled),
		errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrLockNotAcquired):
		status = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
