package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JmLalande/JMockDraft/internal/draft"
	"github.com/JmLalande/JMockDraft/internal/registry"
	"github.com/JmLalande/JMockDraft/internal/room"
	"github.com/JmLalande/JMockDraft/internal/types"
)

// Handler upgrades /ws?code=XXXX to a websocket and bridges it to the
// room's inbox. Each connection is one participant.
func Handler(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		reg.Inbox() <- registry.Get{Code: code, Reply: reply}
		if <-reply == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		// Registration goes through the registry so it serializes
		// with cleanup sweeps; the room may have been swept between
		// the lookup above and the upgrade finishing.
		clientID := uuid.NewString()
		out := make(chan room.Out, 8)
		joinReply := make(chan *room.Room, 1)
		reg.Inbox() <- registry.JoinRoom{Code: code, ClientID: clientID, Outbox: out, Reply: joinReply}
		rm := <-joinReply
		if rm == nil {
			conn.Close(websocket.StatusTryAgainLater, "room closed")
			return
		}

		// Anything other than an explicit Leave counts as a drop and
		// gets the short cleanup grace.
		left := false
		defer func() {
			if !left {
				rm.Inbox() <- room.Leave{ClientID: clientID, Abrupt: true}
			}
		}()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go writer(writeCtx, conn, out)

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Clean close or otherwise: the deferred Leave covers
				// membership either way.
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			switch cm.Type {
			case "Pick":
				rm.Inbox() <- room.SubmitPick{
					ClientID: clientID,
					Pick: draft.Pick{
						PlayerID:   cm.PlayerID,
						PlayerName: cm.PlayerName,
						Salary:     cm.Salary,
						Position:   cm.Position,
						Team:       cm.Team,
						Meta:       cm.Meta,
					},
				}
			case "Undo":
				rm.Inbox() <- room.Undo{ClientID: clientID}
			case "RenameTeam":
				rm.Inbox() <- room.Rename{ClientID: clientID, Team: cm.Team, Name: cm.Name}
			case "Leave":
				left = true
				rm.Inbox() <- room.Leave{ClientID: clientID, Abrupt: false}
				return
			default:
				writeError(r.Context(), conn, "unknown message type")
			}
		}
	}
}

// writer drains the room outbox onto the socket until the room closes
// the channel (shutdown or slow-client drop).
func writer(ctx context.Context, conn *websocket.Conn, out <-chan room.Out) {
	for o := range out {
		var msg types.ServerMessage
		switch v := o.(type) {
		case room.Snapshot:
			msg = types.ServerMessage{Type: "StateSnapshot", State: &v}
		case room.Rejection:
			msg = types.ServerMessage{Type: "Error", Error: v.Reason}
		default:
			continue
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		_ = conn.Write(wctx, websocket.MessageText, payload)
		cancel()
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, reason string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Error: reason})
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
