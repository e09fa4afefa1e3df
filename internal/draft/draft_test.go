package draft

import (
	"errors"
	"testing"
)

func twoTeamSettings(perPos int, serpentine bool) Settings {
	return Settings{
		TeamCount:  2,
		Positions:  map[string]int{"F": perPos},
		Serpentine: serpentine,
		SalaryCap:  50000000,
	}
}

func pickFor(team int, playerID string) Pick {
	return Pick{
		PlayerID:   playerID,
		PlayerName: "Player " + playerID,
		Salary:     1000000,
		Position:   "F",
		Team:       team,
	}
}

// applyAll feeds picks in order and fails the test on any rejection.
func applyAll(t *testing.T, st *State, picks ...Pick) {
	t.Helper()
	for _, p := range picks {
		if err := st.ApplyPick(p); err != nil {
			t.Fatalf("ApplyPick(%+v): %v", p, err)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	cases := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{
			name:     "valid",
			settings: Settings{TeamCount: 4, Positions: map[string]int{"F": 2, "D": 1}},
		},
		{
			name:     "zero teams",
			settings: Settings{TeamCount: 0, Positions: map[string]int{"F": 1}},
			wantErr:  true,
		},
		{
			name:     "negative position count",
			settings: Settings{TeamCount: 2, Positions: map[string]int{"F": -1, "D": 2}},
			wantErr:  true,
		},
		{
			name:     "all position counts zero",
			settings: Settings{TeamCount: 2, Positions: map[string]int{"F": 0, "D": 0}},
			wantErr:  true,
		},
		{
			name:     "negative cap",
			settings: Settings{TeamCount: 2, Positions: map[string]int{"F": 1}, SalaryCap: -1},
			wantErr:  true,
		},
		{
			name: "zero-count position allowed beside positive ones",
			settings: Settings{TeamCount: 2, Positions: map[string]int{"F": 1, "G": 0}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.settings.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}

func TestNextTurn_LinearOrderWraps(t *testing.T) {
	s := Settings{TeamCount: 3, Positions: map[string]int{"F": 3}}

	var picks []Pick
	turn := Turn{NextTeam: 0, Direction: 1}
	want := []int{1, 2, 0, 1, 2, 0, 1, 2, Completed}
	for i, w := range want {
		picks = append(picks, pickFor(turn.NextTeam, string(rune('a'+i))))
		turn = NextTurn(s, picks, turn.Direction)
		if turn.NextTeam != w {
			t.Fatalf("after pick %d: want next team %d, got %d", i+1, w, turn.NextTeam)
		}
		if turn.Direction != 1 {
			t.Fatalf("after pick %d: linear order must never reverse, got direction %d", i+1, turn.Direction)
		}
	}
}

func TestNextTurn_SerpentineThreeTeams(t *testing.T) {
	// One slot per position per team, three teams: the boundary team
	// picks twice in a row before the order reverses.
	s := Settings{TeamCount: 3, Positions: map[string]int{"F": 1, "D": 1, "G": 1}, Serpentine: true}

	wantOrder := []int{0, 1, 2, 2, 1, 0, 0, 1, 2}
	positions := []string{"F", "D", "G"}

	var picks []Pick
	turn := Turn{NextTeam: 0, Direction: 1}
	for i, want := range wantOrder {
		if turn.NextTeam != want {
			t.Fatalf("pick %d: want team %d on the clock, got %d", i, want, turn.NextTeam)
		}
		p := pickFor(turn.NextTeam, string(rune('a'+i)))
		p.Position = positions[i/3]
		picks = append(picks, p)
		turn = NextTurn(s, picks, turn.Direction)
	}
	if turn.NextTeam != Completed {
		t.Fatalf("want draft complete after %d picks, got next team %d", len(wantOrder), turn.NextTeam)
	}
}

func TestNextTurn_PureAndRepeatable(t *testing.T) {
	s := twoTeamSettings(2, true)
	picks := []Pick{pickFor(0, "a"), pickFor(1, "b")}

	first := NextTurn(s, picks, 1)
	second := NextTurn(s, picks, 1)
	if first != second {
		t.Fatalf("NextTurn not deterministic: %+v vs %+v", first, second)
	}
	if len(picks) != 2 {
		t.Fatalf("NextTurn mutated its input")
	}
}

func TestScenarioA_LinearTwoTeamsOneSlot(t *testing.T) {
	st := NewState(twoTeamSettings(1, false))

	applyAll(t, &st, pickFor(0, "a"), pickFor(1, "b"))

	if st.Turn.NextTeam != Completed {
		t.Fatalf("want next team -1 after filling both slots, got %d", st.Turn.NextTeam)
	}
	err := st.ApplyPick(pickFor(0, "c"))
	if !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("want ErrWrongTurn once complete, got %v", err)
	}
	if len(st.Picks) != 2 {
		t.Fatalf("rejected pick must not mutate state; have %d picks", len(st.Picks))
	}
}

func TestScenarioB_SerpentineTwoTeamsTwoSlots(t *testing.T) {
	st := NewState(twoTeamSettings(2, true))

	wantOrder := []int{0, 1, 1, 0}
	for i, team := range wantOrder {
		if st.Turn.NextTeam != team {
			t.Fatalf("pick %d: want team %d on the clock, got %d", i, team, st.Turn.NextTeam)
		}
		applyAll(t, &st, pickFor(team, string(rune('a'+i))))
	}
	if st.Turn.NextTeam != Completed {
		t.Fatalf("want next team -1 after 4 picks, got %d", st.Turn.NextTeam)
	}
}

func TestApplyPick_Rejections(t *testing.T) {
	base := func() State {
		st := NewState(Settings{
			TeamCount: 2,
			Positions: map[string]int{"F": 1, "D": 1},
		})
		applyAll(t, &st, pickFor(0, "a")) // team 1 now on the clock
		return st
	}

	cases := []struct {
		name    string
		pick    Pick
		wantErr error
	}{
		{
			name:    "missing player id",
			pick:    Pick{PlayerName: "x", Position: "F", Team: 1},
			wantErr: ErrBadRequest,
		},
		{
			name:    "negative salary",
			pick:    Pick{PlayerID: "z", PlayerName: "x", Salary: -5, Position: "F", Team: 1},
			wantErr: ErrBadRequest,
		},
		{
			name:    "team out of range",
			pick:    pickFor(7, "z"),
			wantErr: ErrBadRequest,
		},
		{
			name:    "out of turn",
			pick:    pickFor(0, "z"),
			wantErr: ErrWrongTurn,
		},
		{
			name:    "player already selected",
			pick:    pickFor(1, "a"),
			wantErr: ErrPlayerTaken,
		},
		{
			name: "position not configured",
			pick: Pick{PlayerID: "z", PlayerName: "x", Position: "QB", Team: 1},
			wantErr: ErrUnknownPosition,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := base()
			before := len(st.Picks)
			err := st.ApplyPick(tc.pick)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
			if len(st.Picks) != before || len(st.Selected) != before {
				t.Fatalf("rejected pick mutated state")
			}
		})
	}
}

func TestApplyPick_PositionCapacity(t *testing.T) {
	// 1 team, F capped at 1 with a D slot leaving room to keep the
	// draft open, so the rejection is capacity, not completion.
	st := NewState(Settings{TeamCount: 1, Positions: map[string]int{"F": 1, "D": 1}})
	applyAll(t, &st, pickFor(0, "a"))

	err := st.ApplyPick(pickFor(0, "b"))
	if !errors.Is(err, ErrPositionFull) {
		t.Fatalf("want ErrPositionFull, got %v", err)
	}
}

func TestInvariants_SelectedTracksPicks(t *testing.T) {
	st := NewState(twoTeamSettings(2, true))
	order := []int{0, 1, 1, 0}
	for i, team := range order {
		applyAll(t, &st, pickFor(team, string(rune('a'+i))))
		if len(st.Selected) != len(st.Picks) {
			t.Fatalf("after pick %d: selected size %d != pick count %d", i+1, len(st.Selected), len(st.Picks))
		}
	}
	seen := map[string]bool{}
	for _, p := range st.Picks {
		if seen[p.PlayerID] {
			t.Fatalf("player %s appears twice", p.PlayerID)
		}
		seen[p.PlayerID] = true
	}
}

func TestUndo_RestoresExactPriorState(t *testing.T) {
	st := NewState(twoTeamSettings(2, true))

	applyAll(t, &st, pickFor(0, "a"), pickFor(1, "b"))
	beforeTurn := st.Turn
	beforePicks := len(st.Picks)

	applyAll(t, &st, pickFor(1, "c"))
	if err := st.UndoPick(); err != nil {
		t.Fatalf("undo: %v", err)
	}

	if st.Turn != beforeTurn {
		t.Fatalf("undo turn pointer: want %+v, got %+v", beforeTurn, st.Turn)
	}
	if len(st.Picks) != beforePicks {
		t.Fatalf("undo pick count: want %d, got %d", beforePicks, len(st.Picks))
	}
	if st.Selected["c"] {
		t.Fatalf("undone player still marked selected")
	}
	if len(st.Selected) != len(st.Picks) {
		t.Fatalf("selected size %d != pick count %d after undo", len(st.Selected), len(st.Picks))
	}
}

func TestUndo_ReopensCompletedDraft(t *testing.T) {
	st := NewState(twoTeamSettings(1, false))
	applyAll(t, &st, pickFor(0, "a"), pickFor(1, "b"))
	if st.Turn.NextTeam != Completed {
		t.Fatalf("precondition: draft should be complete")
	}

	if err := st.UndoPick(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if st.Turn.NextTeam != 1 {
		t.Fatalf("want team 1 back on the clock, got %d", st.Turn.NextTeam)
	}

	applyAll(t, &st, pickFor(1, "b"))
	if st.Turn.NextTeam != Completed {
		t.Fatalf("redo should complete the draft again, got %d", st.Turn.NextTeam)
	}
}

func TestUndo_EmptyHistory(t *testing.T) {
	st := NewState(twoTeamSettings(1, false))
	if err := st.UndoPick(); !errors.Is(err, ErrNoPicks) {
		t.Fatalf("want ErrNoPicks, got %v", err)
	}
}

func TestUndo_FullUnwindMatchesFreshState(t *testing.T) {
	st := NewState(twoTeamSettings(2, true))
	order := []int{0, 1, 1, 0}
	for i, team := range order {
		applyAll(t, &st, pickFor(team, string(rune('a'+i))))
	}
	for range order {
		if err := st.UndoPick(); err != nil {
			t.Fatalf("undo: %v", err)
		}
	}
	fresh := NewState(twoTeamSettings(2, true))
	if st.Turn != fresh.Turn {
		t.Fatalf("fully unwound turn %+v != fresh %+v", st.Turn, fresh.Turn)
	}
	if len(st.Picks) != 0 || len(st.Selected) != 0 {
		t.Fatalf("fully unwound state still holds picks")
	}
}

func TestRenameTeam(t *testing.T) {
	st := NewState(twoTeamSettings(1, false))

	if err := st.RenameTeam(1, "  Sharks  "); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if st.TeamNames[1] != "Sharks" {
		t.Fatalf("want trimmed name Sharks, got %q", st.TeamNames[1])
	}

	if err := st.RenameTeam(1, "   "); err != nil {
		t.Fatalf("blank rename: %v", err)
	}
	if st.TeamNames[1] != DefaultTeamName(1) {
		t.Fatalf("blank rename should restore default, got %q", st.TeamNames[1])
	}

	if err := st.RenameTeam(9, "x"); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("want ErrBadRequest for bad team index, got %v", err)
	}
}
