package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"dispatchai-pro/internal/hos"
	"dispatchai-pro/internal/middleware"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/utils"

	"github.com/go-chi/chi/v5"
)

type ResolveEditRequest struct {
	Decision string `json:"decision"` // "accept" or "reject"
}

// ResolveLogEdit lets a driver accept or reject an edit proposed against their log
func ResolveLogEdit(st *store.Store, wf *hos.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req ResolveEditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		decision, err := hos.ParseDecision(req.Decision)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		edit, err := st.Edit(chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		if edit.DriverID != userClaims.UserID {
			utils.RespondError(w, http.StatusForbidden, "Only the driver can resolve an edit to their log")
			return
		}

		resolved, err := wf.ResolveEdit(r.Context(), edit.ID, decision, userClaims.UserID)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		utils.RespondData(w, http.StatusOK, resolved)
	}
}

// ownLog answers 403 unless the log belongs to the signed-in driver
func ownLog(w http.ResponseWriter, st *store.Store, logID, userID string) bool {
	lg, err := st.Log(logID)
	if err != nil {
		utils.RespondAppError(w, err)
		return false
	}
	if lg.DriverID != userID {
		utils.RespondError(w, http.StatusForbidden, "Drivers can only change their own logs")
		return false
	}
	return true
}

// CertifyLog certifies the signed-in driver's log
func CertifyLog(st *store.Store, wf *hos.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !ownLog(w, st, chi.URLParam(r, "id"), userClaims.UserID) {
			return
		}

		lg, err := wf.Certify(r.Context(), chi.URLParam(r, "id"), userClaims.UserID)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		utils.RespondData(w, http.StatusOK, lg)
	}
}

type DutyStatusRequest struct {
	Status   models.DutyStatus  `json:"status"`
	At       string             `json:"at"` // HH:MM
	Location string             `json:"location"`
	Origin   models.EventOrigin `json:"origin"`
	Notes    string             `json:"notes"`
}

// RecordDutyStatus closes the driver's open event and starts a new one
func RecordDutyStatus(st *store.Store, wf *hos.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !ownLog(w, st, chi.URLParam(r, "id"), userClaims.UserID) {
			return
		}

		var req DutyStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		lg, err := wf.RecordDutyStatus(r.Context(), hos.DutyStatusInput{
			LogID:    chi.URLParam(r, "id"),
			DriverID: userClaims.UserID,
			Status:   req.Status,
			At:       req.At,
			Location: req.Location,
			Origin:   req.Origin,
			Notes:    req.Notes,
		})
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		utils.RespondData(w, http.StatusOK, lg)
	}
}

type FCMTokenRequest struct {
	Token string `json:"token"`
}

// RegisterFCMToken stores the device token push notifications are sent to
func RegisterFCMToken(st *store.Store, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req FCMTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.Token) == "" {
			utils.RespondError(w, http.StatusBadRequest, "token is required")
			return
		}

		st.SetFCMToken(userClaims.UserID, req.Token)
		log.Info("📱 FCM token registered", "user_id", userClaims.UserID)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "FCM token saved",
		})
	}
}
