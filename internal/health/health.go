package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	StatusUp       = "UP"
	StatusReady    = "READY"
	StatusNotReady = "NOT_READY"
)

type Response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// isReady flips to true once all resolution workers are scheduled.
var isReady atomic.Bool

func SetReady(ready bool) {
	isReady.Store(ready)
}

func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, Response{
		Status:    StatusUp,
		Timestamp: time.Now(),
	})
}

func ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if isReady.Load() {
		writeJSONResponse(w, http.StatusOK, Response{
			Status:    StatusReady,
			Timestamp: time.Now(),
		})
		return
	}

	writeJSONResponse(w, http.StatusServiceUnavailable, Response{
		Status:    StatusNotReady,
		Timestamp: time.Now(),
	})
}

func writeJSONResponse(w http.ResponseWriter, status int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
