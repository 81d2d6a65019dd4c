package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// hashToken creates a SHA256 hash of a token for comparison with the configured hash
func hashToken(token string) string {
	h := sha256.New()
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// Health check endpoint
// @Summary Health
// @Description Liveness plus the active model version
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	loaded, version := h.prediction.ModelStatus()
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"model_loaded":  loaded,
		"model_version": version,
		"timestamp":     time.Now().UTC(),
	})
}

// Ready check endpoint
// @Summary Readiness
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check all dependencies
	checks := make(map[string]bool, len(h.readyChecks))
	allHealthy := true
	for name, check := range h.readyChecks {
		ok := check(ctx) == nil
		checks[name] = ok
		if !ok {
			allHealthy = false
		}
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	loaded, _ := h.prediction.ModelStatus()
	h.jsonResponse(w, status, map[string]interface{}{
		"ready":        allHealthy,
		"checks":       checks,
		"model_loaded": loaded,
	})
}

// AdminAuthMiddleware validates the admin token against the configured hash
func (h *Handler) AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.adminTokenHash == "" {
			h.errorResponse(w, http.StatusForbidden, "Admin endpoints disabled")
			return
		}

		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if token == "" {
			h.errorResponse(w, http.StatusUnauthorized, "Missing admin token")
			return
		}

		computed := hashToken(token)
		if subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(h.adminTokenHash))) != 1 {
			h.logger.Warnw("Rejected admin token", "remote", r.RemoteAddr)
			h.errorResponse(w, http.StatusUnauthorized, "Invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
