package store

import (
	"strings"
	"sync"

	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/models"
)

// Data is the initial content of a Store
type Data struct {
	Users     []models.User
	Drivers   []models.Driver
	Loads     []models.Load
	DailyLogs []models.DailyLog
	LogEdits  []models.LogEditRequest
	Alerts    []models.Alert
	Tasks     []models.Task
	Invoices  []models.Invoice

	UnassignedEvents []models.UnassignedEvent
}

// Store owns the roster, the load board, the log store and the dashboard
// collections. Reads return copies; writes go through UpdateFleet/UpdateLogs
// so no reader ever observes a partially applied change.
type Store struct {
	// drivers + loads
	fleetMu     sync.RWMutex
	drivers     map[string]*models.Driver
	driverOrder []string
	loads       map[string]*models.Load
	loadOrder   []string

	// daily logs + edit requests
	logMu     sync.RWMutex
	logs      map[string]*models.DailyLog
	logOrder  []string
	edits     map[string]*models.LogEditRequest
	editOrder []string

	unassigned      map[string]*models.UnassignedEvent
	unassignedOrder []string

	// alerts, tasks, invoices, users, push tokens
	boardMu     sync.RWMutex
	alerts      []models.Alert
	tasks       []models.Task
	invoices    []models.Invoice
	users       map[string]models.User
	usersByMail map[string]string
	fcmTokens   map[string]string
}

func New(data Data) *Store {
	s := &Store{
		drivers:     make(map[string]*models.Driver, len(data.Drivers)),
		loads:       make(map[string]*models.Load, len(data.Loads)),
		logs:        make(map[string]*models.DailyLog, len(data.DailyLogs)),
		edits:       make(map[string]*models.LogEditRequest, len(data.LogEdits)),
		unassigned:  make(map[string]*models.UnassignedEvent, len(data.UnassignedEvents)),
		users:       make(map[string]models.User, len(data.Users)),
		usersByMail: make(map[string]string, len(data.Users)),
		fcmTokens:   make(map[string]string),
	}

	for _, d := range data.Drivers {
		d := d.Clone()
		s.drivers[d.ID] = &d
		s.driverOrder = append(s.driverOrder, d.ID)
	}
	for _, l := range data.Loads {
		l := l.Clone()
		s.loads[l.ID] = &l
		s.loadOrder = append(s.loadOrder, l.ID)
	}
	for _, lg := range data.DailyLogs {
		lg := lg.Clone()
		s.logs[lg.ID] = &lg
		s.logOrder = append(s.logOrder, lg.ID)
	}
	for _, e := range data.LogEdits {
		e := e.Clone()
		s.edits[e.ID] = &e
		s.editOrder = append(s.editOrder, e.ID)
	}
	for _, e := range data.UnassignedEvents {
		e := e.Clone()
		s.unassigned[e.ID] = &e
		s.unassignedOrder = append(s.unassignedOrder, e.ID)
	}
	for _, u := range data.Users {
		s.users[u.ID] = u
		s.usersByMail[strings.ToLower(u.Email)] = u.ID
	}
	s.alerts = append(s.alerts, data.Alerts...)
	s.tasks = append(s.tasks, data.Tasks...)
	s.invoices = append(s.invoices, data.Invoices...)

	return s
}

// Drivers returns the roster in insertion order
func (s *Store) Drivers() []models.Driver {
	s.fleetMu.RLock()
	defer s.fleetMu.RUnlock()
	return s.driversLocked()
}

func (s *Store) driversLocked() []models.Driver {
	out := make([]models.Driver, 0, len(s.driverOrder))
	for _, id := range s.driverOrder {
		out = append(out, s.drivers[id].Clone())
	}
	return out
}

func (s *Store) Driver(id string) (models.Driver, error) {
	s.fleetMu.RLock()
	defer s.fleetMu.RUnlock()
	d, ok := s.drivers[id]
	if !ok {
		return models.Driver{}, apperr.NotFound("driver", id)
	}
	return d.Clone(), nil
}

// Loads returns the load board in insertion order
func (s *Store) Loads() []models.Load {
	s.fleetMu.RLock()
	defer s.fleetMu.RUnlock()
	return s.loadsLocked()
}

func (s *Store) loadsLocked() []models.Load {
	out := make([]models.Load, 0, len(s.loadOrder))
	for _, id := range s.loadOrder {
		out = append(out, s.loads[id].Clone())
	}
	return out
}

func (s *Store) Load(id string) (models.Load, error) {
	s.fleetMu.RLock()
	defer s.fleetMu.RUnlock()
	l, ok := s.loads[id]
	if !ok {
		return models.Load{}, apperr.NotFound("load", id)
	}
	return l.Clone(), nil
}

// FleetSnapshot returns the roster and the board as of one instant
func (s *Store) FleetSnapshot() ([]models.Driver, []models.Load) {
	s.fleetMu.RLock()
	defer s.fleetMu.RUnlock()
	return s.driversLocked(), s.loadsLocked()
}

// FleetTx stages driver and load changes. Nothing is visible to readers
// until the surrounding UpdateFleet call commits.
type FleetTx struct {
	s       *Store
	drivers map[string]*models.Driver
	loads   map[string]*models.Load
}

// Driver returns a mutable working copy of the driver
func (tx *FleetTx) Driver(id string) (*models.Driver, error) {
	if d, ok := tx.drivers[id]; ok {
		return d, nil
	}
	d, ok := tx.s.drivers[id]
	if !ok {
		return nil, apperr.NotFound("driver", id)
	}
	c := d.Clone()
	tx.drivers[id] = &c
	return &c, nil
}

// Load returns a mutable working copy of the load
func (tx *FleetTx) Load(id string) (*models.Load, error) {
	if l, ok := tx.loads[id]; ok {
		return l, nil
	}
	l, ok := tx.s.loads[id]
	if !ok {
		return nil, apperr.NotFound("load", id)
	}
	c := l.Clone()
	tx.loads[id] = &c
	return &c, nil
}

// UpdateFleet runs fn under the fleet write lock and commits every working
// copy fn touched, or none of them if fn returns an error.
func (s *Store) UpdateFleet(fn func(tx *FleetTx) error) error {
	s.fleetMu.Lock()
	defer s.fleetMu.Unlock()

	tx := &FleetTx{
		s:       s,
		drivers: make(map[string]*models.Driver),
		loads:   make(map[string]*models.Load),
	}
	if err := fn(tx); err != nil {
		return err
	}

	for id, d := range tx.drivers {
		s.drivers[id] = d
	}
	for id, l := range tx.loads {
		s.loads[id] = l
	}
	return nil
}

// UpdateDriverPosition records a position reported by the driver's device.
// An empty location keeps the previous place name.
func (s *Store) UpdateDriverPosition(driverID string, coords models.Coordinates, location string) (models.Driver, error) {
	var updated models.Driver
	err := s.UpdateFleet(func(tx *FleetTx) error {
		d, err := tx.Driver(driverID)
		if err != nil {
			return err
		}
		d.Coordinates = coords
		if location != "" {
			d.CurrentLocation = location
		}
		updated = d.Clone()
		return nil
	})
	return updated, err
}
