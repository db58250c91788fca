package handlers

import (
	"encoding/json"
	"net/http"

	"dispatchai-pro/internal/hos"
	"dispatchai-pro/internal/middleware"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// GetLog returns a daily log. Drivers may only read their own logs.
func GetLog(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lg, ok := readableLog(w, r, st)
		if !ok {
			return
		}
		utils.RespondData(w, http.StatusOK, lg)
	}
}

// GetLogGrid returns the four-lane duty chart of a daily log
func GetLogGrid(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lg, ok := readableLog(w, r, st)
		if !ok {
			return
		}
		grid, err := hos.RenderDutyGrid(lg)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		utils.RespondData(w, http.StatusOK, grid)
	}
}

func readableLog(w http.ResponseWriter, r *http.Request, st *store.Store) (models.DailyLog, bool) {
	userClaims, ok := middleware.GetUserFromContext(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return models.DailyLog{}, false
	}

	lg, err := st.Log(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondAppError(w, err)
		return models.DailyLog{}, false
	}
	if userClaims.Role == models.RoleDriver && lg.DriverID != userClaims.UserID {
		utils.RespondError(w, http.StatusForbidden, "Forbidden")
		return models.DailyLog{}, false
	}
	return lg, true
}

// GetLogEdits lists edit requests, optionally filtered by ?status= and ?logId=.
// Drivers only see requests against their own logs.
func GetLogEdits(wf *hos.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		filter := store.EditFilter{
			LogID:  r.URL.Query().Get("logId"),
			Status: models.EditStatus(r.URL.Query().Get("status")),
		}
		if userClaims.Role == models.RoleDriver {
			filter.DriverID = userClaims.UserID
		}

		edits := wf.ListEdits(filter)
		if edits == nil {
			edits = []models.LogEditRequest{}
		}
		utils.RespondData(w, http.StatusOK, edits)
	}
}

type ProposeEditRequest struct {
	EventID           string            `json:"event_id"`
	ProposedStatus    models.DutyStatus `json:"proposed_status"`
	ProposedStartTime string            `json:"proposed_start_time"`
	ProposedLocation  string            `json:"proposed_location"`
	Reason            string            `json:"reason"`
}

// ProposeLogEdit files an edit request on behalf of the signed-in admin
func ProposeLogEdit(wf *hos.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req ProposeEditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		edit, err := wf.ProposeEdit(r.Context(), hos.ProposeEditInput{
			LogID:             chi.URLParam(r, "id"),
			EventID:           req.EventID,
			ProposedStatus:    req.ProposedStatus,
			ProposedStartTime: req.ProposedStartTime,
			ProposedLocation:  req.ProposedLocation,
			Reason:            req.Reason,
			AdminID:           userClaims.UserID,
		})
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		utils.RespondData(w, http.StatusCreated, edit)
	}
}
