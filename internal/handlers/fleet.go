package handlers

import (
	"net/http"

	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// GetDrivers returns the roster in roster order
func GetDrivers(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondData(w, http.StatusOK, st.Drivers())
	}
}

func GetDriver(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driver, err := st.Driver(chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		utils.RespondData(w, http.StatusOK, driver)
	}
}

// GetLoads returns the load board
func GetLoads(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondData(w, http.StatusOK, st.Loads())
	}
}

func GetLoad(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		load, err := st.Load(chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		utils.RespondData(w, http.StatusOK, load)
	}
}

// GetDashboardStats returns the header counters of the dispatch dashboard
func GetDashboardStats(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondData(w, http.StatusOK, st.Stats())
	}
}
