package dispatch

import (
	"context"
	"fmt"

	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/events"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/metrics"
)

// Service ranks drivers for loads and performs assignments against the store
type Service struct {
	store    *store.Store
	events   events.Publisher
	notifier events.Notifier
	metrics  *metrics.Metrics
	log      logger.Logger
}

func NewService(st *store.Store, pub events.Publisher, notifier events.Notifier, m *metrics.Metrics, log logger.Logger) *Service {
	if pub == nil {
		pub = events.Nop
	}
	if notifier == nil {
		notifier = events.NopNotifier
	}
	return &Service{
		store:    st,
		events:   pub,
		notifier: notifier,
		metrics:  m,
		log:      log.With("component", "dispatch"),
	}
}

// Recommend ranks the roster against a load using one consistent snapshot
func (s *Service) Recommend(loadID string) ([]Candidate, error) {
	drivers, loads := s.store.FleetSnapshot()
	for _, l := range loads {
		if l.ID == loadID {
			return RankEligibleDrivers(l, drivers), nil
		}
	}
	return nil, apperr.NotFound("load", loadID)
}

// AssignmentEvent is the payload of a load_assigned event
type AssignmentEvent struct {
	LoadID      string `json:"load_id"`
	DriverID    string `json:"driver_id"`
	DriverName  string `json:"driver_name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Score       int    `json:"score"`
}

// Assign dispatches a Pending load to an Available driver. The load and the
// driver change together or not at all; concurrent attempts on either one
// serialize and the loser gets InvalidState.
func (s *Service) Assign(ctx context.Context, loadID, driverID string) error {
	var assigned AssignmentEvent

	err := s.store.UpdateFleet(func(tx *store.FleetTx) error {
		load, err := tx.Load(loadID)
		if err != nil {
			return err
		}
		driver, err := tx.Driver(driverID)
		if err != nil {
			return err
		}

		if load.Status != models.LoadStatusPending {
			return apperr.InvalidState("load %s is not pending (status: %s)", load.ID, load.Status)
		}
		if driver.Status != models.DriverStatusAvailable {
			return apperr.InvalidState("driver %s is not available (status: %s)", driver.ID, driver.Status)
		}

		score := ScoreDriverForLoad(*driver, *load)
		if score == 0 {
			return apperr.InvalidState("driver %s is disqualified for load %s: %s", driver.ID, load.ID, disqualificationReason(*driver, *load))
		}

		id := driver.ID
		load.Status = models.LoadStatusDispatched
		load.AssignedDriverID = &id
		driver.Status = models.DriverStatusOnLoad

		assigned = AssignmentEvent{
			LoadID:      load.ID,
			DriverID:    driver.ID,
			DriverName:  driver.Name,
			Origin:      load.Origin,
			Destination: load.Destination,
			Score:       score,
		}
		return nil
	})
	if err != nil {
		s.count(metrics.ResultFailure)
		s.log.Warn("❌ assignment rejected", "load_id", loadID, "driver_id", driverID, "error", err)
		return err
	}

	s.count(metrics.ResultSuccess)
	s.log.Info("✅ load dispatched", "load_id", loadID, "driver_id", driverID, "score", assigned.Score)

	if err := s.events.Publish(ctx, events.New(events.TypeLoadAssigned, assigned, driverID)); err != nil {
		s.log.Warn("⚠️ failed to publish assignment", "load_id", loadID, "error", err)
	}

	body := fmt.Sprintf("Load %s: %s to %s", assigned.LoadID, assigned.Origin, assigned.Destination)
	data := map[string]string{
		"type":    events.TypeLoadAssigned,
		"load_id": assigned.LoadID,
	}
	if err := s.notifier.NotifyUser(ctx, driverID, "New Load Assigned!", body, data); err != nil {
		s.log.Warn("⚠️ failed to send assignment push", "driver_id", driverID, "error", err)
	}

	return nil
}

func (s *Service) count(result string) {
	if s.metrics != nil {
		s.metrics.Assignments.WithLabelValues(result).Inc()
	}
}
