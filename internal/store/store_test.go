package store_test

import (
	"errors"
	"sync"
	"testing"

	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/seed"
	"dispatchai-pro/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	f, err := seed.Default()
	require.NoError(t, err)
	data, err := f.StoreData(bcrypt.MinCost)
	require.NoError(t, err)
	return store.New(data)
}

func TestReads_ReturnIndependentCopies(t *testing.T) {
	s := newStore(t)

	loads := s.Loads()
	loads[0].Status = models.LoadStatusCancelled
	loads[0].Documents[0].Status = models.DocumentMissing

	l, err := s.Load("L-5001")
	require.NoError(t, err)
	assert.Equal(t, models.LoadStatusPending, l.Status)
	assert.Equal(t, models.DocumentApproved, l.Documents[0].Status)

	lg, err := s.Log("LOG-20231026-D102")
	require.NoError(t, err)
	lg.Events[3].Status = models.DutyDriving

	again, err := s.Log("LOG-20231026-D102")
	require.NoError(t, err)
	assert.Equal(t, models.DutyOff, again.Events[3].Status)
}

func TestReads_PreserveRosterOrder(t *testing.T) {
	s := newStore(t)

	var ids []string
	for _, d := range s.Drivers() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"D-101", "D-102", "D-103", "D-104"}, ids)
}

func TestUpdateFleet_CommitsOnSuccess(t *testing.T) {
	s := newStore(t)

	err := s.UpdateFleet(func(tx *store.FleetTx) error {
		d, err := tx.Driver("D-101")
		if err != nil {
			return err
		}
		d.Status = models.DriverStatusOnLoad
		return nil
	})
	require.NoError(t, err)

	d, err := s.Driver("D-101")
	require.NoError(t, err)
	assert.Equal(t, models.DriverStatusOnLoad, d.Status)
}

func TestUpdateFleet_DiscardsOnError(t *testing.T) {
	s := newStore(t)
	boom := errors.New("boom")

	err := s.UpdateFleet(func(tx *store.FleetTx) error {
		l, err := tx.Load("L-5001")
		if err != nil {
			return err
		}
		l.Status = models.LoadStatusDispatched
		return boom
	})
	assert.ErrorIs(t, err, boom)

	l, err := s.Load("L-5001")
	require.NoError(t, err)
	assert.Equal(t, models.LoadStatusPending, l.Status)
}

func TestUpdateFleet_UnknownIDs(t *testing.T) {
	s := newStore(t)

	err := s.UpdateFleet(func(tx *store.FleetTx) error {
		_, err := tx.Driver("D-999")
		return err
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.Load("L-9999")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateFleet_ConcurrentWritersSerialize(t *testing.T) {
	s := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.UpdateFleet(func(tx *store.FleetTx) error {
				d, err := tx.Driver("D-104")
				if err != nil {
					return err
				}
				d.Vehicle.Defects++
				return nil
			})
			_, _ = s.FleetSnapshot()
		}()
	}
	wg.Wait()

	d, err := s.Driver("D-104")
	require.NoError(t, err)
	assert.Equal(t, 52, d.Vehicle.Defects)
}

func TestUpdateLogs_AddEdit(t *testing.T) {
	s := newStore(t)

	req := models.LogEditRequest{
		ID:       "EDIT-2",
		LogID:    "LOG-20231026-D102",
		DriverID: "D-102",
		EventID:  "E2",
		Status:   models.EditStatusPending,
	}
	require.NoError(t, s.UpdateLogs(func(tx *store.LogTx) error {
		return tx.AddEdit(req)
	}))

	err := s.UpdateLogs(func(tx *store.LogTx) error {
		return tx.AddEdit(req)
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	edits := s.ListEdits(store.EditFilter{LogID: "LOG-20231026-D102"})
	require.Len(t, edits, 2)
	assert.Equal(t, "EDIT-1001", edits[0].ID)
	assert.Equal(t, "EDIT-2", edits[1].ID)
	assert.Equal(t, 2, s.PendingEditCount())

	assert.Empty(t, s.ListEdits(store.EditFilter{DriverID: "D-101"}))
}

func TestAlertsAndTasks(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.DismissAlert("ALT-02"))
	assert.Len(t, s.Alerts(), 3)
	assert.ErrorIs(t, s.DismissAlert("ALT-02"), apperr.ErrNotFound)

	task, err := s.ToggleTask("TSK-03")
	require.NoError(t, err)
	assert.False(t, task.Completed)

	_, err = s.ToggleTask("TSK-99")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.AddTask("   ", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	created, err := s.AddTask("Renew IRP plates", "Friday")
	require.NoError(t, err)
	assert.Contains(t, created.ID, "TSK-")
	assert.Len(t, s.Tasks(), 5)
}

func TestMissingDocumentAlerts(t *testing.T) {
	s := newStore(t)

	alerts := s.MissingDocumentAlerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "DOC-L-5003", alerts[0].ID)
	assert.Equal(t, models.AlertCompliance, alerts[0].Type)
	assert.Contains(t, alerts[0].Message, "POD")
}

func TestStats(t *testing.T) {
	s := newStore(t)

	stats := s.Stats()
	assert.InDelta(t, 9150.0, stats.TotalRevenue, 0.001)
	assert.Equal(t, 1, stats.ActiveLoads)
	assert.Equal(t, 3, stats.PendingLoads)
	assert.Equal(t, 2, stats.AvailableDrivers)
	assert.Equal(t, 1, stats.PendingLogEdits)
	assert.InDelta(t, 4400.0, stats.OutstandingReceivables, 0.001)
	assert.Equal(t, 1, stats.OverdueInvoices)
	assert.Equal(t, 1, stats.UnassignedPending)
}

func TestInvoices(t *testing.T) {
	s := newStore(t)

	assert.Len(t, s.Invoices(""), 4)
	overdue := s.Invoices(models.InvoiceOverdue)
	require.Len(t, overdue, 1)
	assert.Equal(t, "INV-2023-002", overdue[0].ID)

	inv, err := s.UpdateInvoiceStatus("INV-2023-002", models.InvoicePaid)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, inv.Status)
	assert.Empty(t, s.Invoices(models.InvoiceOverdue))
	assert.Equal(t, 0, s.Stats().OverdueInvoices)

	_, err = s.UpdateInvoiceStatus("INV-2023-002", models.InvoiceStatus("Lost"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = s.UpdateInvoiceStatus("INV-404", models.InvoiceSent)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUnassignedEvents_ReadsAreCopies(t *testing.T) {
	s := newStore(t)

	pending := s.UnassignedEvents(models.UnassignedPending)
	require.Len(t, pending, 1)
	pending[0].Status = models.UnassignedAssigned

	assert.Len(t, s.UnassignedEvents(models.UnassignedPending), 1)
	assert.Len(t, s.UnassignedEvents(""), 2)
}

func TestUsersAndTokens(t *testing.T) {
	s := newStore(t)

	u, err := s.UserByEmail("Dispatch@DispatchAI.example")
	require.NoError(t, err)
	assert.Equal(t, "ADM-001", u.ID)

	_, err = s.UserByEmail("nobody@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, ok := s.FCMToken("D-101")
	assert.False(t, ok)
	s.SetFCMToken("D-101", "tok")
	tok, ok := s.FCMToken("D-101")
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)
}
