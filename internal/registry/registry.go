package registry

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/JmLalande/JMockDraft/internal/draft"
	"github.com/JmLalande/JMockDraft/internal/room"
)

// codeAlphabet skips characters that read ambiguously when a code is
// relayed by voice or scrawled on a whiteboard (0/O, 1/I/L, U/V).
const codeAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"

type Msg interface{ isRegistryMsg() }

type Create struct {
	Settings draft.Settings
	Reply    chan CreateReply
}

func (Create) isRegistryMsg() {}

type CreateReply struct {
	Code string
	Room *room.Room
	Err  error
}

type Get struct {
	Code  string
	Reply chan *room.Room
}

func (Get) isRegistryMsg() {}

// JoinRoom resolves a code and registers a participant in one step on
// the registry goroutine. Sweeps run on the same goroutine, so a join
// can never land in a room that a sweep is about to shut down.
type JoinRoom struct {
	Code     string
	ClientID string
	Outbox   chan room.Out
	Reply    chan *room.Room
}

func (JoinRoom) isRegistryMsg() {}

// Remove deletes a room unconditionally. The registry's own sweep is
// the only caller that has verified eligibility; external callers get
// the same no-questions-asked behavior.
type Remove struct {
	Code string
}

func (Remove) isRegistryMsg() {}

type Shutdown struct{}

func (Shutdown) isRegistryMsg() {}

// roomEmpty arrives from a room's goroutine when its last participant
// is gone; sweep arrives from a cleanup timer.
type roomEmpty struct {
	code   string
	abrupt bool
}

func (roomEmpty) isRegistryMsg() {}

type sweep struct {
	code string
}

func (sweep) isRegistryMsg() {}

// Options tunes code length and the two cleanup grace periods: long
// for an explicit leave (the user may come straight back), short for a
// dropped connection (a refresh reconnects within seconds).
type Options struct {
	CodeLen    int
	LeaveGrace time.Duration
	DropGrace  time.Duration
}

// Registry owns every live room. A single goroutine serializes all
// map access; rooms themselves run on their own goroutines.
type Registry struct {
	inbox  chan Msg
	rooms  map[string]*room.Room
	timers map[string]clockwork.Timer
	opts   Options
	clock  clockwork.Clock
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, opts Options, clock clockwork.Clock, log *zap.Logger) *Registry {
	ctx, cancel := context.WithCancel(parent)
	r := &Registry{
		inbox:  make(chan Msg, 64),
		rooms:  make(map[string]*room.Room),
		timers: make(map[string]clockwork.Timer),
		opts:   opts,
		clock:  clock,
		log:    log.Named("registry"),
		ctx:    ctx,
		cancel: cancel,
	}
	go r.loop()
	return r
}

func (r *Registry) Inbox() chan<- Msg { return r.inbox }

func (r *Registry) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Create:
				msg.Reply <- r.create(msg.Settings)

			case Get:
				msg.Reply <- r.rooms[msg.Code] // may be nil

			case JoinRoom:
				msg.Reply <- r.join(msg)

			case Remove:
				r.remove(msg.Code)

			case roomEmpty:
				r.scheduleSweep(msg.code, msg.abrupt)

			case sweep:
				r.sweepIfStillEmpty(msg.code)

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Registry) create(settings draft.Settings) CreateReply {
	if err := settings.Validate(); err != nil {
		return CreateReply{Err: err}
	}

	code, err := r.uniqueCode()
	if err != nil {
		return CreateReply{Err: fmt.Errorf("generate code: %w", err)}
	}

	onEmpty := func(abrupt bool) {
		// Runs off the room's loop; hand off to ours.
		select {
		case r.inbox <- roomEmpty{code: code, abrupt: abrupt}:
		case <-r.ctx.Done():
		}
	}
	rm := room.New(r.ctx, code, draft.NewState(settings), onEmpty, r.log)
	r.rooms[code] = rm
	r.log.Info("room created",
		zap.String("room", code),
		zap.Int("teams", settings.TeamCount),
		zap.Bool("serpentine", settings.Serpentine))
	return CreateReply{Code: code, Room: rm}
}

func (r *Registry) join(msg JoinRoom) *room.Room {
	rm, ok := r.rooms[msg.Code]
	if !ok {
		return nil
	}
	// A pending cleanup timer is moot once someone is joining; the
	// sweep would abort on its occupancy re-check anyway.
	if tm, ok := r.timers[msg.Code]; ok {
		tm.Stop()
		delete(r.timers, msg.Code)
	}
	rm.Inbox() <- room.Join{ClientID: msg.ClientID, Outbox: msg.Outbox}
	return rm
}

// uniqueCode samples until the code is not held by a live room. With
// 30^6 codes the loop almost never repeats, but uniqueness comes from
// the check, not the odds.
func (r *Registry) uniqueCode() (string, error) {
	for {
		code, err := randomCode(r.opts.CodeLen)
		if err != nil {
			return "", err
		}
		if _, taken := r.rooms[code]; !taken {
			return code, nil
		}
		r.log.Warn("room code collision, resampling", zap.String("room", code))
	}
}

func randomCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func (r *Registry) scheduleSweep(code string, abrupt bool) {
	if _, ok := r.rooms[code]; !ok {
		return
	}
	grace := r.opts.LeaveGrace
	if abrupt {
		grace = r.opts.DropGrace
	}
	if old, ok := r.timers[code]; ok {
		old.Stop()
	}
	r.timers[code] = r.clock.AfterFunc(grace, func() {
		select {
		case r.inbox <- sweep{code: code}:
		case <-r.ctx.Done():
		}
	})
	r.log.Info("room empty, cleanup scheduled",
		zap.String("room", code),
		zap.Duration("grace", grace))
}

// sweepIfStillEmpty re-checks occupancy at fire time. A participant
// who rejoined during the grace window keeps the room alive; the stale
// timer must not trust the emptiness it was scheduled under.
func (r *Registry) sweepIfStillEmpty(code string) {
	delete(r.timers, code)
	rm, ok := r.rooms[code]
	if !ok {
		return
	}
	reply := make(chan room.View, 1)
	select {
	case rm.Inbox() <- room.GetState{Reply: reply}:
	case <-r.ctx.Done():
		return
	}
	select {
	case view := <-reply:
		if view.NumClients > 0 {
			r.log.Info("cleanup aborted, room rejoined", zap.String("room", code))
			return
		}
	case <-r.ctx.Done():
		// The room goroutine is gone with the context; nothing left
		// to wait on.
		return
	}
	r.remove(code)
}

func (r *Registry) remove(code string) {
	rm, ok := r.rooms[code]
	if !ok {
		return
	}
	if tm, ok := r.timers[code]; ok {
		tm.Stop()
		delete(r.timers, code)
	}
	delete(r.rooms, code)
	rm.Inbox() <- room.Shutdown{}
	r.log.Info("room removed", zap.String("room", code))
}

func (r *Registry) shutdown() {
	for code, tm := range r.timers {
		tm.Stop()
		delete(r.timers, code)
	}
	for code, rm := range r.rooms {
		rm.Inbox() <- room.Shutdown{}
		delete(r.rooms, code)
	}
	r.cancel()
}
