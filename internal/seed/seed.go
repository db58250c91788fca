package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/store"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed fleet.yaml
var fleetYAML []byte

// UserSeed carries a plaintext password that is hashed when users are loaded
type UserSeed struct {
	ID       string `yaml:"id"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
}

// Fixture is the full set of collections the application store starts from
type Fixture struct {
	Users     []UserSeed              `yaml:"users"`
	Drivers   []models.Driver         `yaml:"drivers"`
	Loads     []models.Load           `yaml:"loads"`
	DailyLogs []models.DailyLog       `yaml:"daily_logs"`
	LogEdits  []models.LogEditRequest `yaml:"log_edits"`
	Alerts    []models.Alert          `yaml:"alerts"`
	Tasks     []models.Task           `yaml:"tasks"`
	Invoices  []models.Invoice        `yaml:"invoices"`

	UnassignedEvents []models.UnassignedEvent `yaml:"unassigned_events"`
}

// Default parses the embedded demo fleet
func Default() (*Fixture, error) {
	return Parse(fleetYAML)
}

// LoadFile parses a fixture from disk
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks referential integrity and HOS clock bounds
func (f *Fixture) Validate() error {
	drivers := make(map[string]bool, len(f.Drivers))
	for _, d := range f.Drivers {
		if d.ID == "" {
			return fmt.Errorf("driver without id: %q", d.Name)
		}
		if drivers[d.ID] {
			return fmt.Errorf("duplicate driver id: %s", d.ID)
		}
		drivers[d.ID] = true

		h := d.HOS
		if h.DriveTimeRemaining < 0 || h.DriveTimeRemaining > models.MaxDriveMinutes {
			return fmt.Errorf("driver %s: drive time remaining %d out of range [0,%d]", d.ID, h.DriveTimeRemaining, models.MaxDriveMinutes)
		}
		if h.OnDutyRemaining < 0 || h.OnDutyRemaining > models.MaxOnDutyMinutes {
			return fmt.Errorf("driver %s: on-duty remaining %d out of range [0,%d]", d.ID, h.OnDutyRemaining, models.MaxOnDutyMinutes)
		}
		if h.CycleRemaining < 0 || h.CycleRemaining > models.MaxCycleMinutes {
			return fmt.Errorf("driver %s: cycle remaining %d out of range [0,%d]", d.ID, h.CycleRemaining, models.MaxCycleMinutes)
		}
	}

	loads := make(map[string]bool, len(f.Loads))
	for _, l := range f.Loads {
		if l.ID == "" || loads[l.ID] {
			return fmt.Errorf("missing or duplicate load id: %q", l.ID)
		}
		loads[l.ID] = true
		if l.AssignedDriverID != nil && !drivers[*l.AssignedDriverID] {
			return fmt.Errorf("load %s assigned to unknown driver %s", l.ID, *l.AssignedDriverID)
		}
	}

	logEvents := make(map[string]map[string]bool, len(f.DailyLogs))
	for _, lg := range f.DailyLogs {
		if lg.ID == "" || logEvents[lg.ID] != nil {
			return fmt.Errorf("missing or duplicate log id: %q", lg.ID)
		}
		if !drivers[lg.DriverID] {
			return fmt.Errorf("log %s references unknown driver %s", lg.ID, lg.DriverID)
		}
		events := make(map[string]bool, len(lg.Events))
		for _, e := range lg.Events {
			events[e.ID] = true
		}
		logEvents[lg.ID] = events
	}

	for _, edit := range f.LogEdits {
		events, ok := logEvents[edit.LogID]
		if !ok {
			return fmt.Errorf("edit %s references unknown log %s", edit.ID, edit.LogID)
		}
		if !events[edit.EventID] {
			return fmt.Errorf("edit %s references unknown event %s in log %s", edit.ID, edit.EventID, edit.LogID)
		}
	}

	invoices := make(map[string]bool, len(f.Invoices))
	for _, inv := range f.Invoices {
		if inv.ID == "" || invoices[inv.ID] {
			return fmt.Errorf("missing or duplicate invoice id: %q", inv.ID)
		}
		invoices[inv.ID] = true
		if !inv.Status.Valid() {
			return fmt.Errorf("invoice %s: unknown status %q", inv.ID, inv.Status)
		}
	}

	unassigned := make(map[string]bool, len(f.UnassignedEvents))
	for _, e := range f.UnassignedEvents {
		if e.ID == "" || unassigned[e.ID] {
			return fmt.Errorf("missing or duplicate unassigned event id: %q", e.ID)
		}
		unassigned[e.ID] = true
		if e.AssignedDriverID != nil && !drivers[*e.AssignedDriverID] {
			return fmt.Errorf("unassigned event %s assigned to unknown driver %s", e.ID, *e.AssignedDriverID)
		}
	}

	return nil
}

// HashUsers converts the seeded accounts into users with bcrypt password hashes
func (f *Fixture) HashUsers(cost int) ([]models.User, error) {
	now := time.Now().Unix()
	users := make([]models.User, 0, len(f.Users))
	for _, u := range f.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", u.Email, err)
		}
		users = append(users, models.User{
			ID:        u.ID,
			Email:     strings.ToLower(u.Email),
			Password:  string(hash),
			Name:      u.Name,
			Role:      u.Role,
			CreatedAt: now,
		})
	}
	return users, nil
}

// StoreData builds the initial application store content
func (f *Fixture) StoreData(cost int) (store.Data, error) {
	users, err := f.HashUsers(cost)
	if err != nil {
		return store.Data{}, err
	}
	return store.Data{
		Users:     users,
		Drivers:   f.Drivers,
		Loads:     f.Loads,
		DailyLogs: f.DailyLogs,
		LogEdits:  f.LogEdits,
		Alerts:    f.Alerts,
		Tasks:     f.Tasks,
		Invoices:  f.Invoices,

		UnassignedEvents: f.UnassignedEvents,
	}, nil
}
