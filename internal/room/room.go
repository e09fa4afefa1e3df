package room

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/JmLalande/JMockDraft/internal/draft"
)

// Msg is an inbound room message. The room goroutine consumes these
// one at a time, so a single validate-mutate-broadcast sequence can
// never interleave with another message for the same room.
type Msg interface{ isRoomMsg() }

type Join struct {
	ClientID string
	Outbox   chan Out // where this participant receives snapshots and rejections
}

func (Join) isRoomMsg() {}

type Leave struct {
	ClientID string
	Abrupt   bool // connection drop rather than an explicit leave
}

func (Leave) isRoomMsg() {}

type SubmitPick struct {
	ClientID string
	Pick     draft.Pick
}

func (SubmitPick) isRoomMsg() {}

type Undo struct {
	ClientID string
}

func (Undo) isRoomMsg() {}

type Rename struct {
	ClientID string
	Team     int
	Name     string
}

func (Rename) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// Out is an outbound message for one participant.
type Out interface{ isRoomOut() }

// Snapshot is the full wire-safe room state. Internal sets are
// flattened to sorted lists; every broadcast carries the whole thing,
// so clients rebuild their view from scratch each time instead of
// patching diffs.
type Snapshot struct {
	Version      int            `json:"version"`
	Code         string         `json:"code"`
	Settings     draft.Settings `json:"settings"`
	TeamNames    []string       `json:"team_names"`
	Picks        []draft.Pick   `json:"picks"`
	SelectedIDs  []string       `json:"selected_player_ids"`
	Turn         draft.Turn     `json:"turn"`
	Participants []string       `json:"participants"`
}

func (Snapshot) isRoomOut() {}

// Rejection goes only to the participant whose request failed; nobody
// else hears about it.
type Rejection struct {
	Reason string `json:"reason"`
}

func (Rejection) isRoomOut() {}

// View reflects room internals for the registry's emptiness re-check,
// the HTTP peek endpoint and tests.
type View struct {
	NumClients int
	Snapshot   Snapshot
}

// EmptyFunc is called whenever the last participant is gone. It runs
// on its own goroutine so the room loop never blocks on the receiver;
// the receiver must re-check occupancy before acting on it. Abrupt
// reports whether the emptying departure was a connection drop.
type EmptyFunc func(abrupt bool)

type Room struct {
	code    string
	inbox   chan Msg
	state   draft.State
	version int
	clients map[string]chan Out
	onEmpty EmptyFunc
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, code string, st draft.State, onEmpty EmptyFunc, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		code:    code,
		inbox:   make(chan Msg, 64),
		state:   st,
		clients: make(map[string]chan Out),
		onEmpty: onEmpty,
		log:     log.With(zap.String("room", code)),
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) Code() string { return r.code }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ClientID] = msg.Outbox
				r.log.Info("participant joined", zap.String("client", msg.ClientID))
				r.bump()

			case Leave:
				ch, ok := r.clients[msg.ClientID]
				if !ok {
					break
				}
				delete(r.clients, msg.ClientID)
				close(ch) // releases the connection's writer
				r.log.Info("participant left",
					zap.String("client", msg.ClientID),
					zap.Bool("abrupt", msg.Abrupt))
				if len(r.clients) == 0 {
					r.reportEmpty(msg.Abrupt)
					break
				}
				r.bump()

			case SubmitPick:
				if err := r.state.ApplyPick(msg.Pick); err != nil {
					r.reject(msg.ClientID, err.Error())
					break
				}
				r.bump()

			case Undo:
				if err := r.state.UndoPick(); err != nil {
					r.reject(msg.ClientID, err.Error())
					break
				}
				r.bump()

			case Rename:
				if err := r.state.RenameTeam(msg.Team, msg.Name); err != nil {
					r.reject(msg.ClientID, err.Error())
					break
				}
				r.bump()

			case GetState:
				msg.Reply <- View{
					NumClients: len(r.clients),
					Snapshot:   r.snapshot(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

// bump advances the version and pushes the new full state to every
// participant.
func (r *Room) bump() {
	r.version++
	r.broadcast(r.snapshot())
}

func (r *Room) broadcast(snap Snapshot) {
	for id, ch := range r.clients {
		select {
		case ch <- snap:
		default:
			// Slow or stuck participant: drop it rather than block
			// the whole room.
			close(ch)
			delete(r.clients, id)
			r.log.Warn("dropped slow participant", zap.String("client", id))
		}
	}
	if len(r.clients) == 0 {
		r.reportEmpty(true)
	}
}

func (r *Room) reject(clientID, reason string) {
	ch, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- Rejection{Reason: reason}:
	default:
		close(ch)
		delete(r.clients, clientID)
		r.log.Warn("dropped slow participant", zap.String("client", clientID))
		if len(r.clients) == 0 {
			r.reportEmpty(true)
		}
	}
}

func (r *Room) reportEmpty(abrupt bool) {
	if r.onEmpty != nil {
		go r.onEmpty(abrupt)
	}
}

func (r *Room) snapshot() Snapshot {
	selected := make([]string, 0, len(r.state.Selected))
	for id := range r.state.Selected {
		selected = append(selected, id)
	}
	sort.Strings(selected)

	participants := make([]string, 0, len(r.clients))
	for id := range r.clients {
		participants = append(participants, id)
	}
	sort.Strings(participants)

	picks := make([]draft.Pick, len(r.state.Picks))
	copy(picks, r.state.Picks)
	names := make([]string, len(r.state.TeamNames))
	copy(names, r.state.TeamNames)

	return Snapshot{
		Version:      r.version,
		Code:         r.code,
		Settings:     r.state.Settings,
		TeamNames:    names,
		Picks:        picks,
		SelectedIDs:  selected,
		Turn:         r.state.Turn,
		Participants: participants,
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}
