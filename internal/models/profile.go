package models

// Shoe is one pair of running shoes with accumulated mileage. Max is
// user-configured (not a Strava field) and overlaid from settings.
type Shoe struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Miles float64 `json:"miles"`
	Max   float64 `json:"max"`
}

// Profile is the athlete profile card: identity, YTD totals, shoes.
// Best-effort context; a fetch failure degrades the coaching context
// instead of aborting it.
type Profile struct {
	Name                  string  `json:"name"`
	City                  string  `json:"city"`
	State                 string  `json:"state"`
	Avatar                string  `json:"avatar"`
	YTDMiles              float64 `json:"ytd_miles"`
	Shoes                 []Shoe  `json:"shoes"`
	MeasurementPreference string  `json:"measurement_preference"`
}
