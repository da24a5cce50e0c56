//go:build !integration

package model

import "testing"

func TestBundlePrice(t *testing.T) {
	cases := []struct {
		name     string
		base     int64
		discount int
		want     int64
	}{
		{"twenty percent off", 500, 20, 400},
		{"no discount", 500, 0, 500},
		{"full discount", 500, 100, 0},
		{"rounds down", 99, 33, 66}, // 99*67/100 = 66.33
		{"zero base stays zero", 0, 50, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &Bundle{Discount: tc.discount}
			if got := b.Price(tc.base); got != tc.want {
				t.Errorf("Price(%d) with %d%% = %d, want %d", tc.base, tc.discount, got, tc.want)
			}
		})
	}
}

func TestPaymentComplete(t *testing.T) {
	if (&Payment{Status: PaymentStatusPending}).Complete() {
		t.Error("pending payment reported complete")
	}
	if !(&Payment{Status: PaymentStatusComplete}).Complete() {
		t.Error("complete payment reported pending")
	}
}
