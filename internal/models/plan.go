package models

// PlanItem is a (run type, remaining count) pair of work still owed
// this week. Count-zero items stay in the plan but contribute nothing
// to remaining-work text; a plan whose counts all sum to zero marks a
// rest day.
type PlanItem struct {
	Type  string `json:"type" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
	Notes string `json:"notes,omitempty"`
}

// PlanTotal sums the remaining counts across all plan items.
func PlanTotal(plan []PlanItem) int {
	total := 0
	for _, p := range plan {
		total += p.Count
	}
	return total
}
