package draft

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadRequest = errors.New("invalid request")
var ErrBadSettings = errors.New("invalid settings")
var ErrWrongTurn = errors.New("not your turn")
var ErrPlayerTaken = errors.New("player already selected")
var ErrUnknownPosition = errors.New("unknown position")
var ErrPositionFull = errors.New("position filled")
var ErrNoPicks = errors.New("no picks to undo")

// Settings are fixed once a room starts; only team display names
// (kept on State, not here) change afterwards. SalaryCap is carried
// for the clients and never enforced here.
type Settings struct {
	TeamCount  int            `json:"team_count"`
	Positions  map[string]int `json:"positions"`
	Serpentine bool           `json:"serpentine"`
	SalaryCap  int            `json:"salary_cap"`
}

func (s Settings) Validate() error {
	if s.TeamCount < 1 {
		return fmt.Errorf("%w: team_count must be at least 1", ErrBadSettings)
	}
	if s.SalaryCap < 0 {
		return fmt.Errorf("%w: salary_cap must not be negative", ErrBadSettings)
	}
	hasSlot := false
	for pos, n := range s.Positions {
		if pos == "" {
			return fmt.Errorf("%w: empty position label", ErrBadSettings)
		}
		if n < 0 {
			return fmt.Errorf("%w: position %q has negative count", ErrBadSettings, pos)
		}
		if n > 0 {
			hasSlot = true
		}
	}
	if !hasSlot {
		return fmt.Errorf("%w: at least one position needs a positive count", ErrBadSettings)
	}
	return nil
}

// SlotsPerTeam is the number of picks each team makes over the draft.
func (s Settings) SlotsPerTeam() int {
	total := 0
	for _, n := range s.Positions {
		total += n
	}
	return total
}

// TotalSlots is the pick count at which the draft is complete.
func (s Settings) TotalSlots() int {
	return s.TeamCount * s.SlotsPerTeam()
}

// Pick records one accepted selection. Player identity, salary and
// position are stored exactly as the requesting client sent them; the
// catalog the client picked from is not consulted here.
type Pick struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Salary     int    `json:"salary"`
	Position   string `json:"position"`
	Team       int    `json:"team"`
	Meta       string `json:"meta,omitempty"`
}

// State is a room's draft state. All mutation goes through ApplyPick,
// UndoPick and RenameTeam; the room goroutine is the only caller, so
// the methods need no locking of their own.
type State struct {
	Settings  Settings
	TeamNames []string
	Picks     []Pick
	Selected  map[string]bool
	Turn      Turn
}

func NewState(s Settings) State {
	names := make([]string, s.TeamCount)
	for i := range names {
		names[i] = DefaultTeamName(i)
	}
	return State{
		Settings:  s,
		TeamNames: names,
		Picks:     []Pick{},
		Selected:  map[string]bool{},
		Turn:      Turn{NextTeam: 0, Direction: 1},
	}
}

func DefaultTeamName(team int) string {
	return fmt.Sprintf("Team %d", team+1)
}

// ApplyPick validates p against the current state and, if every check
// passes, appends it and advances the turn pointer. On any failure the
// state is untouched. Checks run in a fixed order and stop at the
// first failure, so the caller sees the most specific rejection.
func (st *State) ApplyPick(p Pick) error {
	if p.PlayerID == "" || p.PlayerName == "" || p.Position == "" {
		return fmt.Errorf("%w: pick is missing required fields", ErrBadRequest)
	}
	if p.Salary < 0 {
		return fmt.Errorf("%w: salary must not be negative", ErrBadRequest)
	}
	if p.Team < 0 || p.Team >= st.Settings.TeamCount {
		return fmt.Errorf("%w: team %d does not exist", ErrBadRequest, p.Team)
	}
	if p.Team != st.Turn.NextTeam {
		if st.Turn.NextTeam == Completed {
			return fmt.Errorf("%w: draft is complete", ErrWrongTurn)
		}
		return fmt.Errorf("%w: it is %s's turn", ErrWrongTurn, st.TeamNames[st.Turn.NextTeam])
	}
	if st.Selected[p.PlayerID] {
		return fmt.Errorf("%w: %s", ErrPlayerTaken, p.PlayerName)
	}
	need, ok := st.Settings.Positions[p.Position]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPosition, p.Position)
	}
	if st.countAt(p.Team, p.Position) >= need {
		return fmt.Errorf("%w: %s already has %d at %s", ErrPositionFull, st.TeamNames[p.Team], need, p.Position)
	}

	st.Picks = append(st.Picks, p)
	st.Selected[p.PlayerID] = true
	st.Turn = NextTurn(st.Settings, st.Picks, st.Turn.Direction)
	return nil
}

// UndoPick removes the most recent pick and recomputes the turn
// pointer from the shortened history, restoring exactly the state that
// preceded the undone pick.
func (st *State) UndoPick() error {
	if len(st.Picks) == 0 {
		return ErrNoPicks
	}
	last := st.Picks[len(st.Picks)-1]
	st.Picks = st.Picks[:len(st.Picks)-1]
	delete(st.Selected, last.PlayerID)
	st.Turn = ReplayTurn(st.Settings, st.Picks)
	return nil
}

// RenameTeam sets a team's display name. A blank name restores the
// default.
func (st *State) RenameTeam(team int, name string) error {
	if team < 0 || team >= st.Settings.TeamCount {
		return fmt.Errorf("%w: team %d does not exist", ErrBadRequest, team)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTeamName(team)
	}
	st.TeamNames[team] = name
	return nil
}

func (st *State) countAt(team int, position string) int {
	n := 0
	for _, p := range st.Picks {
		if p.Team == team && p.Position == position {
			n++
		}
	}
	return n
}
