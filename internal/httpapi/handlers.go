package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/nx584/panelgw/internal/controller"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func pathInt(r *http.Request, name string) (int, bool) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	zones := s.controller.Registry().Zones()
	out := make([]zoneDTO, 0, len(zones))
	for _, z := range zones {
		out = append(out, toZoneDTO(z))
	}
	writeJSON(w, http.StatusOK, map[string]any{"zones": out})
}

func (s *Server) handlePutZone(w http.ResponseWriter, r *http.Request) {
	n, ok := pathInt(r, "n")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid zone number")
		return
	}
	var body struct {
		Bypassed *bool `json:"bypassed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Bypassed == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"bypassed\": bool}")
		return
	}

	zone, ok := s.controller.Registry().ZoneSnapshot(n)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown zone")
		return
	}
	if zone.Bypassed() == *body.Bypassed {
		writeError(w, http.StatusConflict, "zone already in requested bypass state")
		return
	}
	s.controller.EnqueueZoneBypassToggle(n)
	writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
}

func (s *Server) handleListPartitions(w http.ResponseWriter, r *http.Request) {
	partitions := s.controller.Registry().Partitions()
	out := make([]partitionDTO, 0, len(partitions))
	for _, p := range partitions {
		out = append(out, toPartitionDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"partitions": out})
}

func queryPartitionNumber(r *http.Request) int {
	if raw := r.URL.Query().Get("partition"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return 1
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	partitionNumber := queryPartitionNumber(r)

	switch q.Get("cmd") {
	case "arm":
		kind := q.Get("type")
		if !s.controller.EnqueueArm(kind, partitionNumber) {
			writeError(w, http.StatusBadRequest, "invalid arm type")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
	case "disarm":
		pin4, ok := parseDisarmPin4(q.Get("master_pin"))
		if !ok {
			writeError(w, http.StatusBadRequest, "master_pin must be 4 digits")
			return
		}
		s.controller.EnqueueDisarm(pin4, partitionNumber)
		writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
	default:
		writeError(w, http.StatusBadRequest, "unknown cmd")
	}
}

func masterPinFromHeader(r *http.Request) ([6]int, bool) {
	return parsePin(r.Header.Get("Master-Pin"))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	n, ok := pathInt(r, "n")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user number")
		return
	}
	masterPin, ok := masterPinFromHeader(r)
	if !ok {
		writeError(w, http.StatusForbidden, "missing or invalid Master-Pin header")
		return
	}

	user, known := s.controller.Registry().UserSnapshot(n)
	if !known || !user.Known {
		s.controller.EnqueueUserInfoRequest(masterPin, n)
		if r.URL.Query().Get("retry") != "yes" {
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
			return
		}
		writeError(w, http.StatusNotFound, "user information not yet available")
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

func (s *Server) handlePutUser(w http.ResponseWriter, r *http.Request) {
	n, ok := pathInt(r, "n")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user number")
		return
	}
	masterPin, ok := masterPinFromHeader(r)
	if !ok {
		writeError(w, http.StatusForbidden, "missing or invalid Master-Pin header")
		return
	}
	if n == 1 {
		writeError(w, http.StatusForbidden, "cannot modify the master user")
		return
	}
	if user, known := s.controller.Registry().UserSnapshot(n); known && user.HasAuthority("Master") {
		writeError(w, http.StatusForbidden, "cannot modify a user with Master authority")
		return
	}

	var body struct {
		Pin *string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	var userPin [6]int
	if body.Pin == nil {
		userPin = clearedPin()
	} else {
		parsed, ok := parsePin(*body.Pin)
		if !ok {
			writeError(w, http.StatusBadRequest, "pin must be 4 or 6 digits")
			return
		}
		userPin = parsed
	}

	s.controller.EnqueueSetUserCode(masterPin, n, userPin)
	writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	index, _ := strconv.Atoi(q.Get("index"))
	timeout := s.defaultEventTimeout
	if raw := q.Get("timeout"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil {
			timeout = time.Duration(secs) * time.Second
		}
	}

	events := s.controller.Events().Get(index, timeout)
	lastIndex := index
	payloads := make([]any, 0, len(events))
	for _, e := range events {
		payloads = append(payloads, e.Payload)
		lastIndex = e.Number
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": payloads, "index": lastIndex})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}

// compile-time assertion that *controller.Controller satisfies controllerAPI.
var _ controllerAPI = (*controller.Controller)(nil)
