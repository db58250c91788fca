package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"dispatchai-pro/internal/dispatch"
	"dispatchai-pro/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// GetRecommendations ranks the available drivers for a load
func GetRecommendations(svc *dispatch.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidates, err := svc.Recommend(chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		if candidates == nil {
			candidates = []dispatch.Candidate{}
		}
		utils.RespondData(w, http.StatusOK, candidates)
	}
}

type AssignLoadRequest struct {
	LoadID   string `json:"load_id"`
	DriverID string `json:"driver_id"`
}

func AssignLoad(svc *dispatch.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AssignLoadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.LoadID) == "" || strings.TrimSpace(req.DriverID) == "" {
			utils.RespondError(w, http.StatusBadRequest, "load_id and driver_id are required")
			return
		}

		if err := svc.Assign(r.Context(), req.LoadID, req.DriverID); err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Load dispatched",
		})
	}
}
