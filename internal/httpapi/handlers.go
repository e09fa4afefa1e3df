package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/JmLalande/JMockDraft/internal/draft"
	"github.com/JmLalande/JMockDraft/internal/registry"
	"github.com/JmLalande/JMockDraft/internal/room"
)

type createResponse struct {
	Code  string        `json:"code"`
	State room.Snapshot `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreateRoom starts a fresh draft room from the posted settings and
// answers with its join code and initial state.
func CreateRoom(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings draft.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json"})
			return
		}

		reply := make(chan registry.CreateReply, 1)
		reg.Inbox() <- registry.Create{Settings: settings, Reply: reply}
		cr := <-reply
		if cr.Err != nil {
			status := http.StatusInternalServerError
			if errors.Is(cr.Err, draft.ErrBadSettings) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, errorResponse{Error: cr.Err.Error()})
			return
		}

		viewReply := make(chan room.View, 1)
		cr.Room.Inbox() <- room.GetState{Reply: viewReply}
		view := <-viewReply

		log.Info("room started", zap.String("room", cr.Code))
		writeJSON(w, http.StatusCreated, createResponse{Code: cr.Code, State: view.Snapshot})
	}
}

// GetRoomState is a read-only peek at a room's current snapshot.
func GetRoomState(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := roomCode(r)

		reply := make(chan *room.Room, 1)
		reg.Inbox() <- registry.Get{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "room not found"})
			return
		}

		viewReply := make(chan room.View, 1)
		rm.Inbox() <- room.GetState{Reply: viewReply}
		view := <-viewReply

		writeJSON(w, http.StatusOK, view.Snapshot)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
