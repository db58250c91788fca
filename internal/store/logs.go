package store

import (
	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/models"
)

// EditFilter narrows ListEdits; empty fields match everything
type EditFilter struct {
	LogID    string
	DriverID string
	Status   models.EditStatus
}

func (f EditFilter) matches(e *models.LogEditRequest) bool {
	if f.LogID != "" && e.LogID != f.LogID {
		return false
	}
	if f.DriverID != "" && e.DriverID != f.DriverID {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}

func (s *Store) Logs() []models.DailyLog {
	s.logMu.RLock()
	defer s.logMu.RUnlock()
	out := make([]models.DailyLog, 0, len(s.logOrder))
	for _, id := range s.logOrder {
		out = append(out, s.logs[id].Clone())
	}
	return out
}

func (s *Store) Log(id string) (models.DailyLog, error) {
	s.logMu.RLock()
	defer s.logMu.RUnlock()
	lg, ok := s.logs[id]
	if !ok {
		return models.DailyLog{}, apperr.NotFound("daily log", id)
	}
	return lg.Clone(), nil
}

// ListEdits returns edit requests in creation order
func (s *Store) ListEdits(filter EditFilter) []models.LogEditRequest {
	s.logMu.RLock()
	defer s.logMu.RUnlock()
	var out []models.LogEditRequest
	for _, id := range s.editOrder {
		e := s.edits[id]
		if filter.matches(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

func (s *Store) Edit(id string) (models.LogEditRequest, error) {
	s.logMu.RLock()
	defer s.logMu.RUnlock()
	e, ok := s.edits[id]
	if !ok {
		return models.LogEditRequest{}, apperr.NotFound("log edit request", id)
	}
	return e.Clone(), nil
}

// LogTx stages log and edit-request changes for UpdateLogs
type LogTx struct {
	s          *Store
	logs       map[string]*models.DailyLog
	edits      map[string]*models.LogEditRequest
	newEdits   []string
	unassigned map[string]*models.UnassignedEvent
}

// Log returns a mutable working copy of the log
func (tx *LogTx) Log(id string) (*models.DailyLog, error) {
	if lg, ok := tx.logs[id]; ok {
		return lg, nil
	}
	lg, ok := tx.s.logs[id]
	if !ok {
		return nil, apperr.NotFound("daily log", id)
	}
	c := lg.Clone()
	tx.logs[id] = &c
	return &c, nil
}

// Edit returns a mutable working copy of the edit request
func (tx *LogTx) Edit(id string) (*models.LogEditRequest, error) {
	if e, ok := tx.edits[id]; ok {
		return e, nil
	}
	e, ok := tx.s.edits[id]
	if !ok {
		return nil, apperr.NotFound("log edit request", id)
	}
	c := e.Clone()
	tx.edits[id] = &c
	return &c, nil
}

// Unassigned returns a mutable working copy of an unassigned driving event
func (tx *LogTx) Unassigned(id string) (*models.UnassignedEvent, error) {
	if e, ok := tx.unassigned[id]; ok {
		return e, nil
	}
	e, ok := tx.s.unassigned[id]
	if !ok {
		return nil, apperr.NotFound("unassigned event", id)
	}
	c := e.Clone()
	tx.unassigned[id] = &c
	return &c, nil
}

// AddEdit stages a new edit request
func (tx *LogTx) AddEdit(req models.LogEditRequest) error {
	if _, ok := tx.s.edits[req.ID]; ok {
		return apperr.InvalidState("log edit request %s already exists", req.ID)
	}
	if _, ok := tx.edits[req.ID]; ok {
		return apperr.InvalidState("log edit request %s already exists", req.ID)
	}
	c := req.Clone()
	tx.edits[req.ID] = &c
	tx.newEdits = append(tx.newEdits, req.ID)
	return nil
}

// UpdateLogs runs fn under the log write lock; changes commit only if fn succeeds
func (s *Store) UpdateLogs(fn func(tx *LogTx) error) error {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	tx := &LogTx{
		s:          s,
		logs:       make(map[string]*models.DailyLog),
		edits:      make(map[string]*models.LogEditRequest),
		unassigned: make(map[string]*models.UnassignedEvent),
	}
	if err := fn(tx); err != nil {
		return err
	}

	for id, lg := range tx.logs {
		s.logs[id] = lg
	}
	for id, e := range tx.edits {
		s.edits[id] = e
	}
	s.editOrder = append(s.editOrder, tx.newEdits...)
	for id, e := range tx.unassigned {
		s.unassigned[id] = e
	}
	return nil
}

// PendingEditCount counts edit requests still awaiting the driver
func (s *Store) PendingEditCount() int {
	return len(s.ListEdits(EditFilter{Status: models.EditStatusPending}))
}

// UnassignedEvents lists unassigned driving in recorded order. An empty
// status matches every event.
func (s *Store) UnassignedEvents(status models.UnassignedStatus) []models.UnassignedEvent {
	s.logMu.RLock()
	defer s.logMu.RUnlock()
	out := []models.UnassignedEvent{}
	for _, id := range s.unassignedOrder {
		e := s.unassigned[id]
		if status == "" || e.Status == status {
			out = append(out, e.Clone())
		}
	}
	return out
}
