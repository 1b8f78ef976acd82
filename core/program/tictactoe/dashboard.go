package tictactoe

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/lumeranet/ledgerengine/core/program"
	"github.com/lumeranet/ledgerengine/core/types"
)

// MaxTrackedGames bounds the dashboard's recently-seen game list.
const MaxTrackedGames = 32

// Dashboard is the dashboard account's StateBytes payload: a bounded,
// most-recent-first list of game account ids, replacing the original's
// tictactoe_dashboard_program UI aggregation.
type Dashboard struct {
	Games []types.AccountId
}

func decodeDashboard(data []byte) (Dashboard, error) {
	if len(data) == 0 {
		return Dashboard{}, nil
	}
	var d Dashboard
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&d); err != nil {
		return Dashboard{}, fmt.Errorf("tictactoe: decode dashboard: %w", err)
	}
	return d, nil
}

func (d Dashboard) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d); err != nil {
		return nil, fmt.Errorf("tictactoe: encode dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

// DashboardProgram is the built-in TicTacToeDashboard program.
// KeyList = [submitter, dashboard account]. Userdata decodes as the
// game AccountId to register.
type DashboardProgram struct{}

func (DashboardProgram) Execute(view program.AccountView, userdata []byte) error {
	if view.Len() < 2 {
		return fmt.Errorf("tictactoe: dashboard needs a submitter and a dashboard account")
	}
	var gameID types.AccountId
	if err := gob.NewDecoder(bytes.NewReader(userdata)).Decode(&gameID); err != nil {
		return fmt.Errorf("tictactoe: decode game id: %w", err)
	}

	dash := view.Get(1)
	d, err := decodeDashboard(dash.StateBytes)
	if err != nil {
		return err
	}
	d.Games = append([]types.AccountId{gameID}, d.Games...)
	if len(d.Games) > MaxTrackedGames {
		d.Games = d.Games[:MaxTrackedGames]
	}

	data, err := d.encode()
	if err != nil {
		return err
	}
	dash.OwnerProgramId = DashboardID
	dash.StateBytes = data
	view.Set(1, dash)
	return nil
}
