package store

import (
	"fmt"
	"strings"
	"time"

	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/models"

	"github.com/google/uuid"
)

func (s *Store) Alerts() []models.Alert {
	s.boardMu.RLock()
	defer s.boardMu.RUnlock()
	return append([]models.Alert{}, s.alerts...)
}

// DismissAlert removes an alert from the dashboard
func (s *Store) DismissAlert(id string) error {
	s.boardMu.Lock()
	defer s.boardMu.Unlock()
	for i, a := range s.alerts {
		if a.ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("alert", id)
}

// MissingDocumentAlerts derives a Compliance alert for every load on the road
// that still has a Missing document
func (s *Store) MissingDocumentAlerts() []models.Alert {
	loads := s.Loads()
	now := time.Now().UTC().Format(time.RFC3339)

	var out []models.Alert
	for _, l := range loads {
		if l.Status != models.LoadStatusDispatched && l.Status != models.LoadStatusInTransit {
			continue
		}
		missing := l.MissingDocuments()
		if len(missing) == 0 {
			continue
		}
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = string(m)
		}
		out = append(out, models.Alert{
			ID:        "DOC-" + l.ID,
			Type:      models.AlertCompliance,
			Message:   fmt.Sprintf("Load #%s is missing %s", l.ID, strings.Join(names, ", ")),
			Priority:  "Medium",
			Timestamp: now,
		})
	}
	return out
}

func (s *Store) Tasks() []models.Task {
	s.boardMu.RLock()
	defer s.boardMu.RUnlock()
	return append([]models.Task{}, s.tasks...)
}

// AddTask appends an open task to the dispatcher's list
func (s *Store) AddTask(text, dueDate string) (models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, apperr.Validation("task text is required")
	}

	t := models.Task{
		ID:      "TSK-" + uuid.New().String(),
		Text:    text,
		DueDate: dueDate,
	}

	s.boardMu.Lock()
	s.tasks = append(s.tasks, t)
	s.boardMu.Unlock()
	return t, nil
}

// ToggleTask flips a task's completion flag and returns the updated task
func (s *Store) ToggleTask(id string) (models.Task, error) {
	s.boardMu.Lock()
	defer s.boardMu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = !s.tasks[i].Completed
			return s.tasks[i], nil
		}
	}
	return models.Task{}, apperr.NotFound("task", id)
}

// Invoices lists invoices in issue order. An empty status matches every invoice.
func (s *Store) Invoices(status models.InvoiceStatus) []models.Invoice {
	s.boardMu.RLock()
	defer s.boardMu.RUnlock()
	out := []models.Invoice{}
	for _, inv := range s.invoices {
		if status == "" || inv.Status == status {
			out = append(out, inv)
		}
	}
	return out
}

// UpdateInvoiceStatus moves an invoice to any billing status
func (s *Store) UpdateInvoiceStatus(id string, status models.InvoiceStatus) (models.Invoice, error) {
	if !status.Valid() {
		return models.Invoice{}, apperr.Validation("unknown invoice status %q", status)
	}
	s.boardMu.Lock()
	defer s.boardMu.Unlock()
	for i := range s.invoices {
		if s.invoices[i].ID == id {
			s.invoices[i].Status = status
			return s.invoices[i], nil
		}
	}
	return models.Invoice{}, apperr.NotFound("invoice", id)
}

// UserByEmail looks up a login account; emails compare case-insensitively
func (s *Store) UserByEmail(email string) (models.User, error) {
	s.boardMu.RLock()
	defer s.boardMu.RUnlock()
	id, ok := s.usersByMail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return models.User{}, apperr.NotFound("user", email)
	}
	return s.users[id], nil
}

func (s *Store) User(id string) (models.User, error) {
	s.boardMu.RLock()
	defer s.boardMu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user", id)
	}
	return u, nil
}

// SetFCMToken registers the device token push notifications go to
func (s *Store) SetFCMToken(userID, token string) {
	s.boardMu.Lock()
	defer s.boardMu.Unlock()
	s.fcmTokens[userID] = token
}

func (s *Store) FCMToken(userID string) (string, bool) {
	s.boardMu.RLock()
	defer s.boardMu.RUnlock()
	t, ok := s.fcmTokens[userID]
	return t, ok && t != ""
}

// Stats summarizes the board for the dashboard header
func (s *Store) Stats() models.DashboardStats {
	drivers, loads := s.FleetSnapshot()

	var stats models.DashboardStats
	for _, l := range loads {
		stats.TotalRevenue += l.Rate
		switch l.Status {
		case models.LoadStatusInTransit:
			stats.ActiveLoads++
		case models.LoadStatusPending:
			stats.PendingLoads++
		}
	}
	for _, d := range drivers {
		if d.Status == models.DriverStatusAvailable {
			stats.AvailableDrivers++
		}
	}
	stats.PendingLogEdits = s.PendingEditCount()
	for _, inv := range s.Invoices("") {
		if inv.Status.Outstanding() {
			stats.OutstandingReceivables += inv.Amount
		}
		if inv.Status == models.InvoiceOverdue {
			stats.OverdueInvoices++
		}
	}
	stats.UnassignedPending = len(s.UnassignedEvents(models.UnassignedPending))
	return stats
}
