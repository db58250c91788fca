package hos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/events"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/metrics"

	"github.com/google/uuid"
)

const timestampLayout = "2006-01-02 15:04"

// Decision resolves a pending edit request
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision accepts "accept"/"reject" in any case, plus the terminal status names
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "accepted":
		return DecisionAccept, nil
	case "reject", "rejected":
		return DecisionReject, nil
	}
	return "", apperr.Validation("decision must be accept or reject, got %q", s)
}

// Workflow manages daily logs and the edit-request lifecycle
type Workflow struct {
	store    *store.Store
	events   events.Publisher
	notifier events.Notifier
	metrics  *metrics.Metrics
	log      logger.Logger
	now      func() time.Time
}

func NewWorkflow(st *store.Store, pub events.Publisher, notifier events.Notifier, m *metrics.Metrics, log logger.Logger) *Workflow {
	if pub == nil {
		pub = events.Nop
	}
	if notifier == nil {
		notifier = events.NopNotifier
	}
	return &Workflow{
		store:    st,
		events:   pub,
		notifier: notifier,
		metrics:  m,
		log:      log.With("component", "hos"),
		now:      time.Now,
	}
}

type ProposeEditInput struct {
	LogID             string            `json:"log_id"`
	EventID           string            `json:"event_id"`
	ProposedStatus    models.DutyStatus `json:"proposed_status"`
	ProposedStartTime string            `json:"proposed_start_time"`
	ProposedLocation  string            `json:"proposed_location"`
	Reason            string            `json:"reason"`
	AdminID           string            `json:"admin_id"`
}

// ProposeEdit files a Pending edit request. The log itself is untouched
// until the driver accepts.
func (w *Workflow) ProposeEdit(ctx context.Context, in ProposeEditInput) (models.LogEditRequest, error) {
	req, err := w.proposeEdit(in)
	if err != nil {
		w.count("propose", metrics.ResultFailure)
		w.log.Warn("❌ log edit proposal rejected", "log_id", in.LogID, "event_id", in.EventID, "error", err)
		return models.LogEditRequest{}, err
	}
	w.count("propose", metrics.ResultSuccess)
	w.log.Info("📝 log edit proposed", "request_id", req.ID, "log_id", req.LogID, "event_id", req.EventID, "admin_id", req.AdminID)

	w.publish(ctx, events.New(events.TypeLogEditProposed, req, req.DriverID))
	body := fmt.Sprintf("A change to event %s on log %s needs your approval: %s", req.EventID, req.LogID, req.Reason)
	if err := w.notifier.NotifyUser(ctx, req.DriverID, "Log Edit Requested", body, map[string]string{
		"type":       events.TypeLogEditProposed,
		"request_id": req.ID,
		"log_id":     req.LogID,
	}); err != nil {
		w.log.Warn("⚠️ failed to send edit push", "driver_id", req.DriverID, "error", err)
	}
	return req, nil
}

func (w *Workflow) proposeEdit(in ProposeEditInput) (models.LogEditRequest, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return models.LogEditRequest{}, apperr.Validation("reason is required")
	}
	if !in.ProposedStatus.Valid() {
		return models.LogEditRequest{}, apperr.Validation("proposed status must be one of OFF, SB, D, ON, got %q", in.ProposedStatus)
	}
	start, err := ParseClock(in.ProposedStartTime)
	if err != nil {
		return models.LogEditRequest{}, apperr.Validation("proposed start time: %v", err)
	}

	var req models.LogEditRequest
	err = w.store.UpdateLogs(func(tx *store.LogTx) error {
		lg, err := tx.Log(in.LogID)
		if err != nil {
			return err
		}
		if lg.EventIndex(in.EventID) < 0 {
			return apperr.NotFound("event", fmt.Sprintf("%s in log %s", in.EventID, in.LogID))
		}

		req = models.LogEditRequest{
			ID:                "EDIT-" + uuid.New().String(),
			LogID:             lg.ID,
			DriverID:          lg.DriverID,
			EventID:           in.EventID,
			ProposedStatus:    in.ProposedStatus,
			ProposedStartTime: FormatClock(start),
			ProposedLocation:  strings.TrimSpace(in.ProposedLocation),
			Reason:            strings.TrimSpace(in.Reason),
			AdminID:           in.AdminID,
			Status:            models.EditStatusPending,
			Timestamp:         w.now().UTC().Format(timestampLayout),
		}
		return tx.AddEdit(req)
	})
	return req, err
}

// ResolveEdit moves a Pending request to Accepted or Rejected. Accepting
// applies the change to the target event and re-derives the log in the
// same critical section that marks the request terminal.
func (w *Workflow) ResolveEdit(ctx context.Context, requestID string, decision Decision, actorID string) (models.LogEditRequest, error) {
	var resolved models.LogEditRequest

	err := w.store.UpdateLogs(func(tx *store.LogTx) error {
		req, err := tx.Edit(requestID)
		if err != nil {
			return err
		}
		if req.Status != models.EditStatusPending {
			return apperr.InvalidState("log edit request %s is already %s", req.ID, req.Status)
		}

		switch decision {
		case DecisionAccept:
			if strings.TrimSpace(req.Reason) == "" {
				return apperr.Validation("log edit request %s has no reason", req.ID)
			}
			lg, err := tx.Log(req.LogID)
			if err != nil {
				return err
			}
			if err := applyEdit(lg, *req); err != nil {
				return err
			}
			Recompute(lg)
			if lg.Certified {
				lg.Certified = false
				lg.RecertificationRequired = true
			}
			req.Status = models.EditStatusAccepted
		case DecisionReject:
			req.Status = models.EditStatusRejected
		default:
			return apperr.Validation("unknown decision %q", decision)
		}

		at := w.now().UTC().Format(timestampLayout)
		by := actorID
		req.ResolvedAt = &at
		req.ResolvedBy = &by
		resolved = req.Clone()
		return nil
	})
	if err != nil {
		w.count("resolve", metrics.ResultFailure)
		w.log.Warn("❌ log edit resolution failed", "request_id", requestID, "decision", decision, "error", err)
		return models.LogEditRequest{}, err
	}

	w.count("resolve", metrics.ResultSuccess)
	w.log.Info("✅ log edit resolved", "request_id", resolved.ID, "status", resolved.Status, "actor_id", actorID)
	w.publish(ctx, events.New(events.TypeLogEditResolved, resolved, resolved.DriverID))
	return resolved, nil
}

// applyEdit writes the proposal onto its event. Moving the start time moves
// the previous event's end with it so the day stays partitioned.
func applyEdit(lg *models.DailyLog, req models.LogEditRequest) error {
	idx := lg.EventIndex(req.EventID)
	if idx < 0 {
		return apperr.NotFound("event", fmt.Sprintf("%s in log %s", req.EventID, lg.ID))
	}
	newStart, err := ParseClock(req.ProposedStartTime)
	if err != nil {
		return apperr.Validation("proposed start time: %v", err)
	}

	ev := &lg.Events[idx]
	end := MinutesPerDay
	if !ev.Ongoing() {
		if end, err = ParseClock(ev.EndTime); err != nil {
			return apperr.Validation("event %s: %v", ev.ID, err)
		}
	}
	if newStart >= end {
		return apperr.Validation("proposed start %s is not before the end of event %s", req.ProposedStartTime, ev.ID)
	}

	if idx == 0 {
		if newStart != 0 {
			return apperr.Validation("the first event of the day must start at 00:00")
		}
	} else {
		prev := &lg.Events[idx-1]
		prevStart, err := ParseClock(prev.StartTime)
		if err != nil {
			return apperr.Validation("event %s: %v", prev.ID, err)
		}
		if newStart <= prevStart {
			return apperr.Validation("proposed start %s would leave event %s empty", req.ProposedStartTime, prev.ID)
		}
		prev.EndTime = FormatClock(newStart)
		prev.Duration = newStart - prevStart
	}

	ev.Status = req.ProposedStatus
	ev.StartTime = FormatClock(newStart)
	if req.ProposedLocation != "" {
		ev.Location = req.ProposedLocation
	}
	ev.Origin = models.EventOriginManual
	if !ev.Ongoing() {
		ev.Duration = end - newStart
	}
	return nil
}

// Certify marks the driver's log as certified and clears any pending
// recertification flag
func (w *Workflow) Certify(ctx context.Context, logID, driverID string) (models.DailyLog, error) {
	var certified models.DailyLog
	err := w.store.UpdateLogs(func(tx *store.LogTx) error {
		lg, err := tx.Log(logID)
		if err != nil {
			return err
		}
		if lg.DriverID != driverID {
			return apperr.InvalidState("log %s belongs to driver %s", lg.ID, lg.DriverID)
		}
		if lg.Certified {
			return apperr.InvalidState("log %s is already certified", lg.ID)
		}
		if err := ValidateLog(*lg); err != nil {
			return err
		}
		lg.Certified = true
		lg.RecertificationRequired = false
		certified = lg.Clone()
		return nil
	})
	if err != nil {
		return models.DailyLog{}, err
	}

	w.log.Info("✅ log certified", "log_id", logID, "driver_id", driverID)
	w.publish(ctx, events.New(events.TypeLogCertified, certified, driverID))
	return certified, nil
}

type DutyStatusInput struct {
	LogID    string             `json:"log_id"`
	DriverID string             `json:"driver_id"`
	Status   models.DutyStatus  `json:"status"`
	At       string             `json:"at"`
	Location string             `json:"location"`
	Origin   models.EventOrigin `json:"origin"`
	Notes    string             `json:"notes"`
}

// RecordDutyStatus closes the open final event at the given time and opens a
// new one. Certified logs only change through the edit workflow.
func (w *Workflow) RecordDutyStatus(ctx context.Context, in DutyStatusInput) (models.DailyLog, error) {
	if !in.Status.Valid() {
		return models.DailyLog{}, apperr.Validation("status must be one of OFF, SB, D, ON, got %q", in.Status)
	}
	at, err := ParseClock(in.At)
	if err != nil {
		return models.DailyLog{}, apperr.Validation("time: %v", err)
	}
	if at >= MinutesPerDay {
		return models.DailyLog{}, apperr.Validation("time must be before 24:00")
	}
	origin := in.Origin
	if origin == "" {
		origin = models.EventOriginAuto
	}

	var updated models.DailyLog
	err = w.store.UpdateLogs(func(tx *store.LogTx) error {
		lg, err := tx.Log(in.LogID)
		if err != nil {
			return err
		}
		if in.DriverID != "" && lg.DriverID != in.DriverID {
			return apperr.InvalidState("log %s belongs to driver %s", lg.ID, lg.DriverID)
		}
		if lg.Certified {
			return apperr.InvalidState("log %s is certified; changes require an edit request", lg.ID)
		}
		if len(lg.Events) == 0 || !lg.Events[len(lg.Events)-1].Ongoing() {
			return apperr.InvalidState("log %s has no open event", lg.ID)
		}

		open := &lg.Events[len(lg.Events)-1]
		start, err := ParseClock(open.StartTime)
		if err != nil {
			return apperr.Validation("event %s: %v", open.ID, err)
		}
		if at <= start {
			return apperr.Validation("time %s is not after the open event's start %s", in.At, open.StartTime)
		}

		open.EndTime = FormatClock(at)
		open.Duration = at - start

		location := in.Location
		if location == "" {
			location = open.Location
		}
		lg.Events = append(lg.Events, models.ELDEvent{
			ID:        nextEventID(*lg),
			Status:    in.Status,
			StartTime: FormatClock(at),
			EndTime:   models.EndOngoing,
			Location:  location,
			VehicleID: open.VehicleID,
			Origin:    origin,
			Notes:     in.Notes,
		})
		Recompute(lg)
		updated = lg.Clone()
		return nil
	})
	if err != nil {
		return models.DailyLog{}, err
	}

	w.log.Info("🕒 duty status recorded", "log_id", in.LogID, "status", in.Status, "at", in.At)
	w.publish(ctx, events.New(events.TypeDutyStatusRecorded, updated, updated.DriverID))
	return updated, nil
}

func nextEventID(lg models.DailyLog) string {
	for n := len(lg.Events) + 1; ; n++ {
		id := fmt.Sprintf("E%d", n)
		if lg.EventIndex(id) < 0 {
			return id
		}
	}
}

// ListEdits returns edit requests matching filter in creation order
func (w *Workflow) ListEdits(filter store.EditFilter) []models.LogEditRequest {
	return w.store.ListEdits(filter)
}

// PendingEditsForDriver lists the requests awaiting the driver's decision
func (w *Workflow) PendingEditsForDriver(driverID string) []models.LogEditRequest {
	return w.store.ListEdits(store.EditFilter{DriverID: driverID, Status: models.EditStatusPending})
}

func (w *Workflow) publish(ctx context.Context, ev events.Event) {
	if err := w.events.Publish(ctx, ev); err != nil {
		w.log.Warn("⚠️ failed to publish event", "type", ev.Type, "error", err)
	}
}

func (w *Workflow) count(action, result string) {
	if w.metrics != nil {
		w.metrics.LogEdits.WithLabelValues(action, result).Inc()
	}
}
