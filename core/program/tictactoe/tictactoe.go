// Package tictactoe implements the TicTacToe and TicTacToeDashboard
// built-in programs: self-contained illustrative state machines with
// the same post-condition contract as the other built-ins (§4.4),
// replacing the original's tictactoe_dashboard_program.
package tictactoe

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/lumeranet/ledgerengine/core/program"
	"github.com/lumeranet/ledgerengine/core/types"
)

// ID is the TicTacToe program's well-known program id.
var ID = types.ProgramId{3}

// DashboardID is the TicTacToeDashboard program's well-known program id.
var DashboardID = types.ProgramId{4}

// Mark is a board cell's occupant.
type Mark byte

const (
	Empty Mark = iota
	X
	O
)

// Board is the 3x3 game state stored in a game account's StateBytes.
type Board struct {
	Cells [9]Mark
	Turn  Mark // whose turn it is: X or O
	Done  bool
	// Winner is Empty while the game is undecided.
	Winner Mark
}

// Move is a TicTacToe program instruction: place Turn's mark at Cell.
type Move struct {
	Cell int
}

func decodeBoard(data []byte) (Board, error) {
	if len(data) == 0 {
		return Board{Turn: X}, nil
	}
	var b Board
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return Board{}, fmt.Errorf("tictactoe: decode board: %w", err)
	}
	return b, nil
}

func (b Board) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("tictactoe: encode board: %w", err)
	}
	return buf.Bytes(), nil
}

// Program is the built-in TicTacToe program. KeyList = [player, game
// account]. Userdata decodes as a Move.
type Program struct{}

func (Program) Execute(view program.AccountView, userdata []byte) error {
	if view.Len() < 2 {
		return fmt.Errorf("tictactoe: needs a player and a game account")
	}
	var mv Move
	if err := gob.NewDecoder(bytes.NewReader(userdata)).Decode(&mv); err != nil {
		return fmt.Errorf("tictactoe: decode move: %w", err)
	}
	if mv.Cell < 0 || mv.Cell > 8 {
		return fmt.Errorf("tictactoe: cell %d out of range", mv.Cell)
	}

	game := view.Get(1)
	board, err := decodeBoard(game.StateBytes)
	if err != nil {
		return err
	}
	if board.Done {
		return fmt.Errorf("tictactoe: game already finished")
	}
	if board.Cells[mv.Cell] != Empty {
		return fmt.Errorf("tictactoe: cell %d already occupied", mv.Cell)
	}

	board.Cells[mv.Cell] = board.Turn
	if w := winner(board.Cells); w != Empty {
		board.Done = true
		board.Winner = w
	} else if full(board.Cells) {
		board.Done = true
	}
	if board.Turn == X {
		board.Turn = O
	} else {
		board.Turn = X
	}

	data, err := board.encode()
	if err != nil {
		return err
	}
	game.OwnerProgramId = ID
	game.StateBytes = data
	view.Set(1, game)
	return nil
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func winner(cells [9]Mark) Mark {
	for _, l := range lines {
		a, b, c := cells[l[0]], cells[l[1]], cells[l[2]]
		if a != Empty && a == b && b == c {
			return a
		}
	}
	return Empty
}

func full(cells [9]Mark) bool {
	for _, c := range cells {
		if c == Empty {
			return false
		}
	}
	return true
}
