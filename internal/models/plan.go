package models

const (
	PlanFree       = "free"
	PlanProMonthly = "pro-monthly"
	PlanProYearly  = "pro-yearly"
)

// Unlimited marks a plan limit with no cap.
const Unlimited = -1

type PlanFeatures struct {
	MaxForms       int  `json:"maxForms"`
	MaxSubmissions int  `json:"maxSubmissions"`
	ResponseRate   bool `json:"responseRate"`
	Analytics      bool `json:"analytics"`
	Customization  bool `json:"customization"`
}

type Plan struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    int          `json:"price"`
	Billing  string       `json:"billing"`
	Features PlanFeatures `json:"features"`
}

// Plans is the fixed catalogue, cheapest first.
var Plans = []Plan{
	{
		ID: PlanFree, Name: "Free Plan", Price: 0, Billing: "monthly",
		Features: PlanFeatures{MaxForms: 3, MaxSubmissions: 10, ResponseRate: true},
	},
	{
		ID: PlanProMonthly, Name: "Pro Monthly", Price: 5, Billing: "monthly",
		Features: PlanFeatures{MaxForms: Unlimited, MaxSubmissions: 25000, ResponseRate: true, Analytics: true, Customization: true},
	},
	{
		ID: PlanProYearly, Name: "Pro Yearly", Price: 48, Billing: "yearly",
		Features: PlanFeatures{MaxForms: Unlimited, MaxSubmissions: 25000, ResponseRate: true, Analytics: true, Customization: true},
	},
}

// PlanByID returns the plan with the given id. Unknown and empty ids resolve
// to the free plan.
func PlanByID(id string) Plan {
	for _, p := range Plans {
		if p.ID == id {
			return p
		}
	}
	return Plans[0]
}

// KnownPlan reports whether id names a catalogue plan.
func KnownPlan(id string) bool {
	for _, p := range Plans {
		if p.ID == id {
			return true
		}
	}
	return false
}
