package rules

import "testing"

func TestTariffPlanByID(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		found       bool
		price       int64
		requests    int
		listingDays int
		topDays     int
	}{
		{name: "kumush", id: "KUMUSH", found: true, price: 50_000, requests: 5, listingDays: 10, topDays: 0},
		{name: "oltin lower case", id: "oltin", found: true, price: 100_000, requests: 10, listingDays: 15, topDays: 7},
		{name: "vip padded", id: "  VIP ", found: true, price: 250_000, requests: 20, listingDays: 30, topDays: 15},
		{name: "unknown", id: "PLATINUM", found: false},
		{name: "empty", id: "", found: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, ok := TariffPlanByID(tc.id)
			if ok != tc.found {
				t.Fatalf("unexpected lookup result for %q: got %v want %v", tc.id, ok, tc.found)
			}
			if !tc.found {
				return
			}
			if plan.Price != tc.price {
				t.Fatalf("unexpected price: got %d want %d", plan.Price, tc.price)
			}
			if plan.Requests != tc.requests {
				t.Fatalf("unexpected requests: got %d want %d", plan.Requests, tc.requests)
			}
			if plan.ListingDays != tc.listingDays {
				t.Fatalf("unexpected listing days: got %d want %d", plan.ListingDays, tc.listingDays)
			}
			if plan.TopDays != tc.topDays {
				t.Fatalf("unexpected top days: got %d want %d", plan.TopDays, tc.topDays)
			}
		})
	}
}

func TestTariffPlansIsACopy(t *testing.T) {
	plans := TariffPlans()
	if len(plans) != 3 {
		t.Fatalf("unexpected catalog size: %d", len(plans))
	}

	plans[0].Price = 1
	fresh, ok := TariffPlanByID(plans[0].ID)
	if !ok {
		t.Fatalf("catalog entry disappeared: %s", plans[0].ID)
	}
	if fresh.Price == 1 {
		t.Fatalf("catalog must not be mutable through TariffPlans")
	}
}
