package services

import "testing"

func TestDeriveMerchant(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"keeps statement casing", "Zomato Order", "Zomato Order"},
		{"strips reference numbers", "AMAZON*4821-REF99", "AMAZON"},
		{"strips payment rails", "UPI/ZOMATO/402113/PAYMENT", "ZOMATO"},
		{"strips company suffix", "CHAAYOS PVT LTD GURGAON", "CHAAYOS GURGAON"},
		{"keeps first three tokens", "big bazaar hyper city mall", "big bazaar hyper"},
		{"separators become spaces", "swiggy-instamart_blr", "swiggy instamart blr"},
		{"all boilerplate falls back to cleaned text", "POS REF", "POS REF"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveMerchant(tc.description); got != tc.want {
				t.Errorf("DeriveMerchant(%q) = %q, want %q", tc.description, got, tc.want)
			}
		})
	}
}

func TestIsOnlineTransaction(t *testing.T) {
	online := []string{"AMAZON MARKETPLACE", "paytm upi 4411", "WWW.MYNTRA.COM ORDER"}
	offline := []string{"Central Cash Counter", "HPCL FILLING STATION"}

	for _, d := range online {
		if !IsOnlineTransaction(d) {
			t.Errorf("expected %q to look online", d)
		}
	}
	for _, d := range offline {
		if IsOnlineTransaction(d) {
			t.Errorf("expected %q to look offline", d)
		}
	}
}
