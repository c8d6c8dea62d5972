package rules

import "strings"

// TariffPlan is a fixed catalog entry. Prices are in so'm.
type TariffPlan struct {
	ID          string
	Name        string
	Price       int64
	Requests    int
	ListingDays int
	TopDays     int
}

const (
	TariffKumush = "KUMUSH"
	TariffOltin  = "OLTIN"
	TariffVIP    = "VIP"
)

var tariffCatalog = []TariffPlan{
	{
		ID:          TariffKumush,
		Name:        "Kumush",
		Price:       50_000,
		Requests:    5,
		ListingDays: 10,
		TopDays:     0,
	},
	{
		ID:          TariffOltin,
		Name:        "Oltin",
		Price:       100_000,
		Requests:    10,
		ListingDays: 15,
		TopDays:     7,
	},
	{
		ID:          TariffVIP,
		Name:        "VIP",
		Price:       250_000,
		Requests:    20,
		ListingDays: 30,
		TopDays:     15,
	},
}

func TariffPlans() []TariffPlan {
	plans := make([]TariffPlan, len(tariffCatalog))
	copy(plans, tariffCatalog)
	return plans
}

func TariffPlanByID(id string) (TariffPlan, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(id))
	for _, plan := range tariffCatalog {
		if plan.ID == normalized {
			return plan, true
		}
	}
	return TariffPlan{}, false
}
