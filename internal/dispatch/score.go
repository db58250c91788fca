package dispatch

import (
	"fmt"
	"sort"
	"strings"

	"dispatchai-pro/internal/models"
)

const (
	BaseScore          = 70
	LocationBonus      = 20
	DriveTimeBonus     = 10
	DriveTimeThreshold = 480 // minutes (8h)
)

// Candidate is one ranked driver for a load
type Candidate struct {
	Driver   models.Driver `json:"driver"`
	Score    int           `json:"score"`
	Eligible bool          `json:"eligible"`
	Reason   string        `json:"reason,omitempty"`
}

// originToken is the place name before the first comma, e.g. "Gary" for "Gary, IN"
func originToken(origin string) string {
	city, _, _ := strings.Cut(origin, ",")
	return strings.TrimSpace(city)
}

// ScoreDriverForLoad rates how well a driver fits a load, 0-100.
// Location matching is plain substring containment on place names.
func ScoreDriverForLoad(driver models.Driver, load models.Load) int {
	// Hazmat without endorsement overrides everything
	if disqualified(driver, load) {
		return 0
	}

	score := BaseScore

	// Factor 1: already in the origin city
	if token := originToken(load.Origin); token != "" && strings.Contains(driver.CurrentLocation, token) {
		score += LocationBonus
	}

	// Factor 2: enough drive time left for a full run
	if driver.HOS.DriveTimeRemaining >= DriveTimeThreshold {
		score += DriveTimeBonus
	}

	return score
}

func disqualified(driver models.Driver, load models.Load) bool {
	return load.Hazmat != nil && !driver.HazmatEndorsed
}

func disqualificationReason(driver models.Driver, load models.Load) string {
	if load.Hazmat == nil {
		return ""
	}
	return fmt.Sprintf("hazmat class %s requires an endorsement %s does not hold", load.Hazmat.Class, driver.Name)
}

// RankEligibleDrivers scores every Available driver and orders them best
// first. Equal scores keep roster order. Disqualified drivers stay in the
// list with Eligible=false.
func RankEligibleDrivers(load models.Load, roster []models.Driver) []Candidate {
	candidates := make([]Candidate, 0, len(roster))
	for _, d := range roster {
		if d.Status != models.DriverStatusAvailable {
			continue
		}
		score := ScoreDriverForLoad(d, load)
		c := Candidate{Driver: d, Score: score, Eligible: score > 0}
		if !c.Eligible {
			c.Reason = disqualificationReason(d, load)
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}
