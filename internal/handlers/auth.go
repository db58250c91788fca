package handlers

import (
	"encoding/json"
	"net/http"

	"dispatchai-pro/internal/middleware"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
}

func Login(st *store.Store, auth *middleware.Authenticator, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		log.Info("🔐 Login attempt", "email", req.Email)

		// Find user by email
		user, err := st.UserByEmail(req.Email)
		if err != nil {
			log.Warn("❌ User not found", "email", req.Email)
			writeLogin(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		// Verify password
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Warn("❌ Invalid password", "email", req.Email)
			writeLogin(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		tokenString, err := auth.IssueToken(user)
		if err != nil {
			log.Error("❌ Failed to create token", "error", err)
			writeLogin(w, http.StatusInternalServerError, LoginResponse{OK: false})
			return
		}

		userResponse := user.ToUserResponse()
		log.Info("✅ Login successful", "email", user.Email, "role", user.Role)

		writeLogin(w, http.StatusOK, LoginResponse{
			OK:    true,
			Token: tokenString,
			User:  &userResponse,
		})
	}
}

func writeLogin(w http.ResponseWriter, status int, resp LoginResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
