package hos

import (
	"fmt"

	"dispatchai-pro/internal/models"
)

// DutyBar is one event drawn on its status lane. Offset and Width are
// fractions of the 24-hour day.
type DutyBar struct {
	EventID   string             `json:"event_id"`
	StartTime string             `json:"start_time"`
	EndTime   string             `json:"end_time"`
	Location  string             `json:"location"`
	Origin    models.EventOrigin `json:"origin"`
	Offset    float64            `json:"offset"`
	Width     float64            `json:"width"`
}

type DutyLane struct {
	Status models.DutyStatus `json:"status"`
	Bars   []DutyBar         `json:"bars"`
}

// DutyGrid is the four-lane view of one daily log
type DutyGrid struct {
	LogID    string     `json:"log_id"`
	DriverID string     `json:"driver_id"`
	Date     string     `json:"date"`
	Lanes    []DutyLane `json:"lanes"`
}

// Lane returns the lane for status
func (g DutyGrid) Lane(status models.DutyStatus) DutyLane {
	for _, l := range g.Lanes {
		if l.Status == status {
			return l
		}
	}
	return DutyLane{Status: status}
}

// RenderDutyGrid projects a log onto OFF, SB, D and ON lanes. Events without
// a duration are drawn DefaultEventMinutes wide.
func RenderDutyGrid(log models.DailyLog) (DutyGrid, error) {
	grid := DutyGrid{
		LogID:    log.ID,
		DriverID: log.DriverID,
		Date:     log.Date,
		Lanes:    make([]DutyLane, len(models.DutyStatuses)),
	}
	lane := make(map[models.DutyStatus]int, len(models.DutyStatuses))
	for i, s := range models.DutyStatuses {
		grid.Lanes[i] = DutyLane{Status: s, Bars: []DutyBar{}}
		lane[s] = i
	}

	for _, e := range log.Events {
		idx, ok := lane[e.Status]
		if !ok {
			return DutyGrid{}, fmt.Errorf("event %s: unknown duty status %q", e.ID, e.Status)
		}
		start, err := ParseClock(e.StartTime)
		if err != nil {
			return DutyGrid{}, fmt.Errorf("event %s: %w", e.ID, err)
		}

		duration := e.Duration
		if duration == 0 {
			duration = DefaultEventMinutes
		}
		width := float64(duration) / MinutesPerDay
		if width < MinBarWidth {
			width = MinBarWidth
		}

		grid.Lanes[idx].Bars = append(grid.Lanes[idx].Bars, DutyBar{
			EventID:   e.ID,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Location:  e.Location,
			Origin:    e.Origin,
			Offset:    float64(start) / MinutesPerDay,
			Width:     width,
		})
	}
	return grid, nil
}
