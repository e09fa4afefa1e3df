package draft

// Completed is the NextTeam value once every slot is filled.
const Completed = -1

// Turn points at the team allowed to pick next and the direction the
// order is currently moving in.
type Turn struct {
	NextTeam  int `json:"next_team"`
	Direction int `json:"direction"`
}

// NextTurn computes the turn pointer after the given pick history. It
// is pure: same inputs, same output, no mutation.
//
// With serpentine order, a pick at a round boundary (last team while
// moving forward, team 0 while moving backward) flips the direction
// and the boundary team picks again before the order reverses. Without
// it, the order wraps around forever until the draft completes.
func NextTurn(s Settings, picks []Pick, priorDirection int) Turn {
	if len(picks) == 0 {
		return Turn{NextTeam: 0, Direction: 1}
	}
	if len(picks) >= s.TotalSlots() {
		// Direction is meaningless once complete, but keeping it
		// makes the pointer deterministic for undo.
		return Turn{NextTeam: Completed, Direction: priorDirection}
	}

	lastTeam := picks[len(picks)-1].Team
	atBoundary := (priorDirection > 0 && lastTeam == s.TeamCount-1) ||
		(priorDirection < 0 && lastTeam == 0)

	if s.Serpentine && atBoundary {
		return Turn{NextTeam: lastTeam, Direction: -priorDirection}
	}
	next := (lastTeam + priorDirection + s.TeamCount) % s.TeamCount
	return Turn{NextTeam: next, Direction: priorDirection}
}

// ReplayTurn folds NextTurn over the whole history, yielding the exact
// pointer the draft held after its final pick. Used after an undo,
// where the direction that was live before the popped pick has to be
// rediscovered from the picks that remain.
func ReplayTurn(s Settings, picks []Pick) Turn {
	t := Turn{NextTeam: 0, Direction: 1}
	for i := range picks {
		t = NextTurn(s, picks[:i+1], t.Direction)
	}
	return t
}
