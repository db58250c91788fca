package models

type UnassignedStatus string

const (
	UnassignedPending   UnassignedStatus = "Pending"
	UnassignedAssigned  UnassignedStatus = "Assigned"
	UnassignedAnnotated UnassignedStatus = "Annotated"
)

// UnassignedEvent is vehicle movement the ELD recorded while no driver was
// logged in. Safety staff either assign it to a driver or annotate it
// (yard move, mechanic test drive).
type UnassignedEvent struct {
	ID               string           `json:"id" yaml:"id"`
	VehicleID        string           `json:"vehicle_id" yaml:"vehicle_id"`
	StartTime        string           `json:"start_time" yaml:"start_time"`
	EndTime          string           `json:"end_time" yaml:"end_time"`
	Location         string           `json:"location" yaml:"location"`
	Miles            float64          `json:"miles" yaml:"miles"`
	Status           UnassignedStatus `json:"status" yaml:"status"`
	AssignedDriverID *string          `json:"assigned_driver_id,omitempty" yaml:"assigned_driver_id"`
	Annotation       string           `json:"annotation,omitempty" yaml:"annotation"`
	ResolvedBy       *string          `json:"resolved_by,omitempty" yaml:"resolved_by"`
}

func (e UnassignedEvent) Clone() UnassignedEvent {
	c := e
	if e.AssignedDriverID != nil {
		id := *e.AssignedDriverID
		c.AssignedDriverID = &id
	}
	if e.ResolvedBy != nil {
		by := *e.ResolvedBy
		c.ResolvedBy = &by
	}
	return c
}
