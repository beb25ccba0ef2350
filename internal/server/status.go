package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/tofgesture/internal/app"
	"github.com/ayusman/tofgesture/internal/recognizer"
	"github.com/ayusman/tofgesture/internal/tof"
)

// StatusHandler reports the pipeline state on GET and changes it on PUT.
type StatusHandler struct {
	app *app.App
}

// NewStatusHandler creates a StatusHandler for a.
func NewStatusHandler(a *app.App) *StatusHandler {
	return &StatusHandler{app: a}
}

// statusUpdate is the PUT body. Absent fields are left unchanged.
type statusUpdate struct {
	Enabled *bool              `json:"enabled"`
	Params  *recognizer.Params `json:"params"`
	Sensor  *tof.SensorParams  `json:"sensor"`
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.app.Status())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *StatusHandler) update(w http.ResponseWriter, r *http.Request) {
	var req statusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Params != nil || req.Sensor != nil {
		st := h.app.Status()
		params, sensor := st.Params, st.Sensor
		if req.Params != nil {
			params = *req.Params
		}
		if req.Sensor != nil {
			sensor = *req.Sensor
		}
		if err := h.app.Reconfigure(params, sensor); err != nil {
			if errors.Is(err, recognizer.ErrInitFailure) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if req.Enabled != nil {
		h.app.SetEnabled(*req.Enabled)
	}

	writeJSON(w, http.StatusOK, h.app.Status())
}
