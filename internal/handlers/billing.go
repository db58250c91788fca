package handlers

import (
	"encoding/json"
	"net/http"

	"dispatchai-pro/internal/events"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// GetInvoices lists invoices, optionally filtered by ?status=
func GetInvoices(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondData(w, http.StatusOK, st.Invoices(models.InvoiceStatus(r.URL.Query().Get("status"))))
	}
}

type InvoiceStatusRequest struct {
	Status models.InvoiceStatus `json:"status"`
}

func UpdateInvoiceStatus(st *store.Store, pub events.Publisher, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InvoiceStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		inv, err := st.UpdateInvoiceStatus(chi.URLParam(r, "id"), req.Status)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		log.Info("💵 Invoice status updated", "invoice_id", inv.ID, "status", inv.Status)
		publish(r, pub, log, events.New(events.TypeInvoiceUpdated, inv, ""))
		utils.RespondData(w, http.StatusOK, inv)
	}
}
