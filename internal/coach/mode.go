package coach

import (
	"time"

	"github.com/rkahn/rundash/internal/models"
	"github.com/rkahn/rundash/internal/timeutil"
)

// eveningHour is the local hour from which a run-less day reads as
// "evening, no run" rather than "pre run".
const eveningHour = 20

// DetectMode classifies the current moment into one of the four
// coaching modes. Checked in order, first match wins:
//
//  1. a run already logged today dominates every other signal
//  2. a supplied plan with zero remaining counts marks a rest day
//  3. 8 PM or later with no run is an evening without one
//  4. otherwise the run is still ahead
//
// A nil plan skips rule 2; an empty non-nil plan counts as exhausted.
// Pure and side-effect free. It is the message cache's invalidation
// key, so it must be recomputed on every request with the same now
// snapshot the context assembler uses.
func DetectMode(activities []models.Activity, plan []models.PlanItem, now time.Time) models.Mode {
	for _, a := range activities {
		if start, ok := a.StartTime(now.Location()); ok && timeutil.SameDay(start, now) {
			return models.ModePostRun
		}
	}

	if plan != nil && models.PlanTotal(plan) == 0 {
		return models.ModeRestDay
	}

	if now.Hour() >= eveningHour {
		return models.ModeEveningNoRun
	}

	return models.ModePreRun
}
