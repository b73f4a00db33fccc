package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter mounts every endpoint under prefix.
func NewRouter(prefix string, h *handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.recoverer, h.requestLog)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found", "")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	})

	api := r.PathPrefix(prefix).Subrouter()

	api.HandleFunc("/health", h.Health).Methods("GET")

	api.HandleFunc("/auth/login", h.Login).Methods("POST")
	api.HandleFunc("/auth/register", h.Register).Methods("POST")
	api.HandleFunc("/auth/validate-token", h.ValidateToken).Methods("GET")
	api.HandleFunc("/auth/refresh-token", h.authenticated(h.RefreshToken)).Methods("POST")
	api.HandleFunc("/auth/logout", h.authenticated(h.Logout)).Methods("POST")
	api.HandleFunc("/auth/user", h.authenticated(h.User)).Methods("GET")

	api.HandleFunc("/auth/forgot-password", h.ForgotPassword).Methods("POST")
	api.HandleFunc("/auth/reset-password", h.ResetPassword).Methods("POST")
	api.HandleFunc("/auth/verify-reset-token", h.VerifyResetToken).Methods("POST")

	api.HandleFunc("/email/verify/{userId}/{hash}", h.VerifyEmail).Methods("GET")
	api.HandleFunc("/email/verify", h.VerifyEmailToken).Methods("GET")
	api.HandleFunc("/email/resend-verification", h.ResendVerification).Methods("POST")

	api.HandleFunc("/auth/check-{field:username|email|phone}", h.CheckAvailability).Methods("POST")

	return r
}
