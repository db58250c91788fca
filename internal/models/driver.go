package models

// DriverStatus represents a driver's current operational state
type DriverStatus string

const (
	DriverStatusAvailable   DriverStatus = "Available"
	DriverStatusOnLoad      DriverStatus = "On Load"
	DriverStatusOffDuty     DriverStatus = "Off Duty"
	DriverStatusMaintenance DriverStatus = "Maintenance"
)

// Regulatory ceilings for the HOS clock snapshot (minutes)
const (
	MaxDriveMinutes  = 660  // 11 hours
	MaxOnDutyMinutes = 840  // 14 hours
	MaxCycleMinutes  = 4200 // 70 hours / 8 days
)

type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// HOSClocks is a cached summary of the driver's duty clocks.
// The authoritative record is the DailyLog event sequence.
type HOSClocks struct {
	Status             DutyStatus `json:"status" yaml:"status"`
	DriveTimeRemaining int        `json:"drive_time_remaining" yaml:"drive_time_remaining"` // minutes
	OnDutyRemaining    int        `json:"on_duty_remaining" yaml:"on_duty_remaining"`       // minutes
	CycleRemaining     int        `json:"cycle_remaining" yaml:"cycle_remaining"`           // minutes (70hr/8day)
}

type VehicleTelemetry struct {
	FuelLevel       int    `json:"fuel_level" yaml:"fuel_level"` // percentage 0-100
	Odometer        int    `json:"odometer" yaml:"odometer"`
	EngineHours     int    `json:"engine_hours" yaml:"engine_hours"`
	HealthStatus    string `json:"health_status" yaml:"health_status"` // "Healthy", "Warning" or "Critical"
	Defects         int    `json:"defects" yaml:"defects"`             // open DVIR defects
	NextServiceDate string `json:"next_service_date" yaml:"next_service_date"`
}

type Driver struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	TruckID         string           `json:"truck_id" yaml:"truck_id"`
	Status          DriverStatus     `json:"status" yaml:"status"`
	CurrentLocation string           `json:"current_location" yaml:"current_location"` // "City, ST"
	Coordinates     Coordinates      `json:"coordinates" yaml:"coordinates"`
	Phone           string           `json:"phone" yaml:"phone"`
	Email           string           `json:"email,omitempty" yaml:"email"`
	HOS             HOSClocks        `json:"hos" yaml:"hos"`
	Vehicle         VehicleTelemetry `json:"vehicle" yaml:"vehicle"`
	HazmatEndorsed  bool             `json:"hazmat_endorsed" yaml:"hazmat_endorsed"`
	LicenseNumber   string           `json:"license_number,omitempty" yaml:"license_number"`
	HireDate        string           `json:"hire_date,omitempty" yaml:"hire_date"`
}

// Clone returns a copy safe to mutate independently
func (d Driver) Clone() Driver {
	return d
}
