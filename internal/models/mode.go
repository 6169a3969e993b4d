package models

// Mode is the coaching situation in effect at a given moment.
// Exactly one mode applies at any time; it is recomputed per request
// and never persisted.
type Mode string

const (
	// ModePreRun means no run logged today and the day is still young
	ModePreRun Mode = "pre_run"
	// ModePostRun means a run was already logged today
	ModePostRun Mode = "post_run"
	// ModeRestDay means the training plan has nothing left this week
	ModeRestDay Mode = "rest_day"
	// ModeEveningNoRun means it is 8 PM or later with no run logged
	ModeEveningNoRun Mode = "evening_no_run"
)

// IsValid reports whether m is one of the four coaching modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModePreRun, ModePostRun, ModeRestDay, ModeEveningNoRun:
		return true
	}
	return false
}

func (m Mode) String() string {
	return string(m)
}
