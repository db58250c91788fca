package models

// DutyStatus is an ELD duty status
type DutyStatus string

const (
	DutyOff     DutyStatus = "OFF"
	DutySleeper DutyStatus = "SB"
	DutyDriving DutyStatus = "D"
	DutyOnDuty  DutyStatus = "ON"
)

// DutyStatuses in grid lane order
var DutyStatuses = []DutyStatus{DutyOff, DutySleeper, DutyDriving, DutyOnDuty}

// Valid reports whether s is one of the four ELD statuses
func (s DutyStatus) Valid() bool {
	switch s {
	case DutyOff, DutySleeper, DutyDriving, DutyOnDuty:
		return true
	}
	return false
}

type EventOrigin string

const (
	EventOriginAuto   EventOrigin = "Auto"
	EventOriginManual EventOrigin = "Manual"
)

// EndOngoing marks the open final event of a log
const EndOngoing = "Now"

// ELDEvent is one duty-status interval. Times are "HH:MM" within the log's day.
type ELDEvent struct {
	ID        string      `json:"id" yaml:"id"`
	Status    DutyStatus  `json:"status" yaml:"status"`
	StartTime string      `json:"start_time" yaml:"start_time"`
	EndTime   string      `json:"end_time" yaml:"end_time"` // "HH:MM" or "Now"
	Duration  int         `json:"duration" yaml:"duration"` // minutes
	Location  string      `json:"location" yaml:"location"`
	VehicleID string      `json:"vehicle_id" yaml:"vehicle_id"`
	Origin    EventOrigin `json:"origin" yaml:"origin"`
	Notes     string      `json:"notes,omitempty" yaml:"notes"`
	Miles     *int        `json:"miles,omitempty" yaml:"miles"`
}

// Ongoing reports whether the event is still open
func (e ELDEvent) Ongoing() bool {
	return e.EndTime == EndOngoing
}

// DailyLog is the legal duty record for one driver for one calendar day
type DailyLog struct {
	ID                      string     `json:"id" yaml:"id"`
	DriverID                string     `json:"driver_id" yaml:"driver_id"`
	Date                    string     `json:"date" yaml:"date"`
	Events                  []ELDEvent `json:"events" yaml:"events"`
	Certified               bool       `json:"certified" yaml:"certified"`
	RecertificationRequired bool       `json:"recertification_required" yaml:"recertification_required"`
	Violations              []string   `json:"violations" yaml:"violations"` // e.g. "11 Hour Rule"
	MilesDriven             int        `json:"miles_driven" yaml:"miles_driven"`
}

func (l DailyLog) Clone() DailyLog {
	c := l
	c.Events = make([]ELDEvent, len(l.Events))
	for i, e := range l.Events {
		if e.Miles != nil {
			m := *e.Miles
			e.Miles = &m
		}
		c.Events[i] = e
	}
	c.Violations = append([]string{}, l.Violations...)
	return c
}

// EventIndex returns the position of eventID in the log, or -1
func (l DailyLog) EventIndex(eventID string) int {
	for i, e := range l.Events {
		if e.ID == eventID {
			return i
		}
	}
	return -1
}

type EditStatus string

const (
	EditStatusPending  EditStatus = "Pending"
	EditStatusAccepted EditStatus = "Accepted"
	EditStatusRejected EditStatus = "Rejected"
)

// LogEditRequest is an admin-proposed change to one event of one log.
// The event itself is untouched until the driver accepts.
type LogEditRequest struct {
	ID                string     `json:"id" yaml:"id"`
	LogID             string     `json:"log_id" yaml:"log_id"`
	DriverID          string     `json:"driver_id" yaml:"driver_id"`
	EventID           string     `json:"event_id" yaml:"event_id"`
	ProposedStatus    DutyStatus `json:"proposed_status" yaml:"proposed_status"`
	ProposedStartTime string     `json:"proposed_start_time" yaml:"proposed_start_time"`
	ProposedLocation  string     `json:"proposed_location" yaml:"proposed_location"`
	Reason            string     `json:"reason" yaml:"reason"`
	AdminID           string     `json:"admin_id" yaml:"admin_id"`
	Status            EditStatus `json:"status" yaml:"status"`
	Timestamp         string     `json:"timestamp" yaml:"timestamp"`
	ResolvedAt        *string    `json:"resolved_at,omitempty" yaml:"resolved_at"`
	ResolvedBy        *string    `json:"resolved_by,omitempty" yaml:"resolved_by"`
}

// Terminal reports whether the request can no longer be resolved
func (r LogEditRequest) Terminal() bool {
	return r.Status == EditStatusAccepted || r.Status == EditStatusRejected
}

func (r LogEditRequest) Clone() LogEditRequest {
	c := r
	if r.ResolvedAt != nil {
		at := *r.ResolvedAt
		c.ResolvedAt = &at
	}
	if r.ResolvedBy != nil {
		by := *r.ResolvedBy
		c.ResolvedBy = &by
	}
	return c
}
