package handlers

import (
	"encoding/json"
	"net/http"

	"dispatchai-pro/internal/events"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// GetAlerts returns stored alerts followed by the compliance alerts derived
// from loads that are on the road with missing paperwork
func GetAlerts(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondData(w, http.StatusOK, append(st.Alerts(), st.MissingDocumentAlerts()...))
	}
}

func DismissAlert(st *store.Store, pub events.Publisher, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := st.DismissAlert(id); err != nil {
			utils.RespondAppError(w, err)
			return
		}

		log.Info("🔕 Alert dismissed", "alert_id", id)
		publish(r, pub, log, events.New(events.TypeAlertDismissed, map[string]string{"alert_id": id}, ""))
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Alert dismissed",
		})
	}
}

func GetTasks(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondData(w, http.StatusOK, st.Tasks())
	}
}

type CreateTaskRequest struct {
	Text    string `json:"text"`
	DueDate string `json:"due_date"`
}

func CreateTask(st *store.Store, pub events.Publisher, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		task, err := st.AddTask(req.Text, req.DueDate)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		log.Info("✅ Task created", "task_id", task.ID)
		publish(r, pub, log, events.New(events.TypeTaskUpdated, task, ""))
		utils.RespondData(w, http.StatusCreated, task)
	}
}

func ToggleTask(st *store.Store, pub events.Publisher, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		task, err := st.ToggleTask(chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		publish(r, pub, log, events.New(events.TypeTaskUpdated, task, ""))
		utils.RespondData(w, http.StatusOK, task)
	}
}

// publish delivers a committed change; failures never fail the request
func publish(r *http.Request, pub events.Publisher, log logger.Logger, ev events.Event) {
	if err := pub.Publish(r.Context(), ev); err != nil {
		log.Warn("⚠️ Failed to publish event", "type", ev.Type, "error", err)
	}
}
