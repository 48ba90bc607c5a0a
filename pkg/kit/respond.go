package kit

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// DetailResponse is the error envelope shared by every non-2xx response.
// Detail is either a plain message or a list of field errors.
type DetailResponse struct {
	Detail any `json:"detail"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDetail writes {"detail": detail}. The request id, when present, travels
// in the X-Request-Id header so the body stays stable for clients.
func WriteDetail(w http.ResponseWriter, r *http.Request, status int, detail any) {
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		w.Header().Set(chimw.RequestIDHeader, reqID)
	}
	WriteJSON(w, status, DetailResponse{Detail: detail})
}
