package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"dispatchai-pro/internal/hos"
	"dispatchai-pro/internal/middleware"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// GetUnassignedEvents lists ELD driving with no driver, optionally filtered by ?status=
func GetUnassignedEvents(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondData(w, http.StatusOK, st.UnassignedEvents(models.UnassignedStatus(r.URL.Query().Get("status"))))
	}
}

type AssignUnassignedRequest struct {
	DriverID string `json:"driver_id"`
}

func AssignUnassignedEvent(wf *hos.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, _ := middleware.GetUserFromContext(r)

		var req AssignUnassignedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.DriverID) == "" {
			utils.RespondError(w, http.StatusBadRequest, "driver_id is required")
			return
		}

		ev, err := wf.AssignUnassigned(r.Context(), chi.URLParam(r, "id"), req.DriverID, userClaims.UserID)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		utils.RespondData(w, http.StatusOK, ev)
	}
}

type AnnotateUnassignedRequest struct {
	Annotation string `json:"annotation"`
}

func AnnotateUnassignedEvent(wf *hos.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, _ := middleware.GetUserFromContext(r)

		var req AnnotateUnassignedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		ev, err := wf.AnnotateUnassigned(r.Context(), chi.URLParam(r, "id"), req.Annotation, userClaims.UserID)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		utils.RespondData(w, http.StatusOK, ev)
	}
}
