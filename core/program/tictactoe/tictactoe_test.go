package tictactoe

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/lumeranet/ledgerengine/core/types"
)

type fakeView struct {
	keys     []types.AccountId
	accounts []types.Account
}

func (v *fakeView) Len() int                   { return len(v.accounts) }
func (v *fakeView) Key(i int) types.AccountId  { return v.keys[i] }
func (v *fakeView) Get(i int) types.Account    { return v.accounts[i] }
func (v *fakeView) Set(i int, a types.Account) { v.accounts[i] = a }

func encodeMove(t *testing.T, cell int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(Move{Cell: cell}); err != nil {
		t.Fatalf("encode move: %v", err)
	}
	return buf.Bytes()
}

func TestTicTacToeRejectsOccupiedCell(t *testing.T) {
	v := &fakeView{keys: []types.AccountId{{1}, {2}}, accounts: []types.Account{{}, {}}}
	if err := (Program{}).Execute(v, encodeMove(t, 0)); err != nil {
		t.Fatalf("first move: %v", err)
	}
	if err := (Program{}).Execute(v, encodeMove(t, 0)); err == nil {
		t.Fatal("expected a move onto an occupied cell to be rejected")
	}
}

func TestTicTacToeDetectsWinner(t *testing.T) {
	v := &fakeView{keys: []types.AccountId{{1}, {2}}, accounts: []types.Account{{}, {}}}
	// X: 0, O: 3, X: 1, O: 4, X: 2 (top row) -> X wins.
	moves := []int{0, 3, 1, 4, 2}
	for _, m := range moves {
		if err := (Program{}).Execute(v, encodeMove(t, m)); err != nil {
			t.Fatalf("move %d: %v", m, err)
		}
	}
	board, err := decodeBoard(v.accounts[1].StateBytes)
	if err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if !board.Done || board.Winner != X {
		t.Fatalf("expected X to have won, got %+v", board)
	}
}

func TestTicTacToeRejectsMoveAfterGameOver(t *testing.T) {
	v := &fakeView{keys: []types.AccountId{{1}, {2}}, accounts: []types.Account{{}, {}}}
	for _, m := range []int{0, 3, 1, 4, 2} {
		if err := (Program{}).Execute(v, encodeMove(t, m)); err != nil {
			t.Fatalf("move %d: %v", m, err)
		}
	}
	if err := (Program{}).Execute(v, encodeMove(t, 5)); err == nil {
		t.Fatal("expected a move after the game ended to be rejected")
	}
}

func TestDashboardProgramTracksRecentGames(t *testing.T) {
	v := &fakeView{keys: []types.AccountId{{1}, {2}}, accounts: []types.Account{{}, {}}}
	var buf bytes.Buffer
	game := types.AccountId{0xAA}
	if err := gob.NewEncoder(&buf).Encode(game); err != nil {
		t.Fatalf("encode game id: %v", err)
	}
	if err := (DashboardProgram{}).Execute(v, buf.Bytes()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	d, err := decodeDashboard(v.accounts[1].StateBytes)
	if err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if len(d.Games) != 1 || d.Games[0] != game {
		t.Fatalf("expected the dashboard to track %v, got %v", game, d.Games)
	}
}
