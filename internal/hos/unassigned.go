package hos

import (
	"context"
	"fmt"
	"strings"

	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/events"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/metrics"
)

// AssignUnassigned attributes Pending unassigned driving to a driver and
// asks the driver to add it to their log
func (w *Workflow) AssignUnassigned(ctx context.Context, eventID, driverID, actorID string) (models.UnassignedEvent, error) {
	driver, err := w.store.Driver(driverID)
	if err != nil {
		return models.UnassignedEvent{}, err
	}

	ev, err := w.resolveUnassigned(eventID, actorID, func(e *models.UnassignedEvent) {
		e.Status = models.UnassignedAssigned
		id := driver.ID
		e.AssignedDriverID = &id
	})
	if err != nil {
		w.count("unassigned_assign", metrics.ResultFailure)
		return models.UnassignedEvent{}, err
	}
	w.count("unassigned_assign", metrics.ResultSuccess)
	w.log.Info("🚛 unassigned driving assigned", "event_id", ev.ID, "vehicle_id", ev.VehicleID, "driver_id", driver.ID)

	w.publish(ctx, events.New(events.TypeUnassignedResolved, ev, driver.ID))
	body := fmt.Sprintf("%.0f miles on %s starting %s were assigned to you", ev.Miles, ev.VehicleID, ev.StartTime)
	if err := w.notifier.NotifyUser(ctx, driver.ID, "Unassigned Driving", body, map[string]string{
		"type":     events.TypeUnassignedResolved,
		"event_id": ev.ID,
	}); err != nil {
		w.log.Warn("⚠️ failed to send unassigned driving push", "driver_id", driver.ID, "error", err)
	}
	return ev, nil
}

// AnnotateUnassigned closes Pending unassigned driving with an explanation
// instead of a driver
func (w *Workflow) AnnotateUnassigned(ctx context.Context, eventID, note, actorID string) (models.UnassignedEvent, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return models.UnassignedEvent{}, apperr.Validation("annotation is required")
	}

	ev, err := w.resolveUnassigned(eventID, actorID, func(e *models.UnassignedEvent) {
		e.Status = models.UnassignedAnnotated
		e.Annotation = note
	})
	if err != nil {
		w.count("unassigned_annotate", metrics.ResultFailure)
		return models.UnassignedEvent{}, err
	}
	w.count("unassigned_annotate", metrics.ResultSuccess)
	w.log.Info("📝 unassigned driving annotated", "event_id", ev.ID, "vehicle_id", ev.VehicleID)

	w.publish(ctx, events.New(events.TypeUnassignedResolved, ev, ""))
	return ev, nil
}

func (w *Workflow) resolveUnassigned(eventID, actorID string, apply func(*models.UnassignedEvent)) (models.UnassignedEvent, error) {
	var out models.UnassignedEvent
	err := w.store.UpdateLogs(func(tx *store.LogTx) error {
		e, err := tx.Unassigned(eventID)
		if err != nil {
			return err
		}
		if e.Status != models.UnassignedPending {
			return apperr.InvalidState("unassigned event %s is already %s", e.ID, e.Status)
		}
		apply(e)
		by := actorID
		e.ResolvedBy = &by
		out = e.Clone()
		return nil
	})
	return out, err
}
