package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nytevibe/nytevibe/internal/server/models"
)

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, message string, data envelope) {
	body := envelope{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	body := envelope{"success": false, "message": message}
	if code != "" {
		body["code"] = code
	}
	writeJSON(w, status, body)
}

// writeFieldErrors sends a 422 with Laravel-style errors{field: [msg]}.
func writeFieldErrors(w http.ResponseWriter, message string, fields map[string]string) {
	errs := make(map[string][]string, len(fields))
	for k, v := range fields {
		errs[k] = []string{v}
	}
	writeJSON(w, http.StatusUnprocessableEntity, envelope{
		"success": false,
		"message": message,
		"code":    "VALIDATION_ERROR",
		"errors":  errs,
	})
}

func userJSON(u *models.User) envelope {
	var verifiedAt any
	if u.EmailVerifiedAt != nil {
		verifiedAt = u.EmailVerifiedAt.UTC().Format(time.RFC3339)
	}
	return envelope{
		"id":                 u.ID,
		"username":           u.Username,
		"first_name":         u.FirstName,
		"last_name":          u.LastName,
		"email":              u.Email,
		"phone":              u.Phone,
		"level":              u.Level,
		"points":             u.Points,
		"email_verified_at":  verifiedAt,
		"followed_venue_ids": []int64{},
		"total_reports":      0,
		"total_ratings":      0,
	}
}
