package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"dispatchai-pro/internal/advice"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/utils"
)

type AdviceRequest struct {
	Prompt string `json:"prompt"`
}

type AdviceResponse struct {
	Reply string `json:"reply"`
}

// GetAdvice answers a dispatcher question with the current fleet as context.
// The advice service never fails; errors come back as a fixed reply.
func GetAdvice(st *store.Store, svc *advice.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			utils.RespondError(w, http.StatusBadRequest, "prompt is required")
			return
		}

		drivers, loads := st.FleetSnapshot()
		reply := svc.GetAdvice(r.Context(), req.Prompt, advice.Context{Drivers: drivers, Loads: loads})
		utils.RespondData(w, http.StatusOK, AdviceResponse{Reply: reply})
	}
}
