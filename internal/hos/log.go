package hos

import (
	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/models"
)

// Simplified rule flags. These are not a legal HOS engine.
const (
	ViolationDrive11  = "11 Hour Rule"
	ViolationWindow14 = "14 Hour Rule"
	ViolationBreak30  = "30 Minute Break"

	driveLimit        = 660 // minutes of driving per day
	dutyWindow        = 840 // minutes from first on-duty
	breakAfterDriving = 480 // driving minutes allowed without a break
	breakMinutes      = 30
)

// ValidateLog checks that the events partition the day: the first starts at
// 00:00, each starts where the previous ended, closed durations match their
// bounds, and only the final event may be open. A closed final event ends at
// 24:00.
func ValidateLog(log models.DailyLog) error {
	if len(log.Events) == 0 {
		return apperr.Validation("log %s has no events", log.ID)
	}

	prevEnd := 0
	for i, e := range log.Events {
		if !e.Status.Valid() {
			return apperr.Validation("event %s: unknown duty status %q", e.ID, e.Status)
		}
		start, err := ParseClock(e.StartTime)
		if err != nil {
			return apperr.Validation("event %s: %v", e.ID, err)
		}
		if start != prevEnd {
			return apperr.Validation("event %s starts at %s, expected %s", e.ID, e.StartTime, FormatClock(prevEnd))
		}

		last := i == len(log.Events)-1
		if e.Ongoing() {
			if !last {
				return apperr.Validation("event %s is open but is not the final event", e.ID)
			}
			return nil
		}

		end, err := ParseClock(e.EndTime)
		if err != nil {
			return apperr.Validation("event %s: %v", e.ID, err)
		}
		if end <= start {
			return apperr.Validation("event %s ends at %s, before it starts", e.ID, e.EndTime)
		}
		if e.Duration != end-start {
			return apperr.Validation("event %s duration %d does not match %s-%s", e.ID, e.Duration, e.StartTime, e.EndTime)
		}
		if last && end != MinutesPerDay {
			return apperr.Validation("final event %s ends at %s, expected 24:00", e.ID, e.EndTime)
		}
		prevEnd = end
	}
	return nil
}

// Recompute re-derives violations and miles driven from the event sequence
func Recompute(log *models.DailyLog) {
	windowStart := -1
	var (
		driving      int
		sinceBreak   int
		offDutyRun   int
		over11       bool
		over14       bool
		missingBreak bool
	)

	for _, e := range log.Events {
		start, err := ParseClock(e.StartTime)
		if err != nil {
			continue
		}
		dur := e.Duration

		switch e.Status {
		case models.DutyDriving:
			if windowStart < 0 {
				windowStart = start
			}
			driving += dur
			if driving > driveLimit {
				over11 = true
			}
			if start+dur > windowStart+dutyWindow {
				over14 = true
			}
			offDutyRun = 0
			sinceBreak += dur
			if sinceBreak > breakAfterDriving {
				missingBreak = true
			}
		case models.DutyOnDuty:
			if windowStart < 0 {
				windowStart = start
			}
			fallthrough
		default:
			offDutyRun += dur
			if offDutyRun >= breakMinutes {
				sinceBreak = 0
			}
		}
	}

	violations := []string{}
	if over11 {
		violations = append(violations, ViolationDrive11)
	}
	if over14 {
		violations = append(violations, ViolationWindow14)
	}
	if missingBreak {
		violations = append(violations, ViolationBreak30)
	}
	log.Violations = violations

	miles, recorded := 0, false
	for _, e := range log.Events {
		if e.Miles != nil {
			miles += *e.Miles
			recorded = true
		}
	}
	if recorded {
		log.MilesDriven = miles
	}
}
