// Command ledgernode boots a single FullNode Supervisor: the CLI
// front-end §1 names as an external collaborator, wired here the way
// the teacher's cmd/geth wires flags, a TOML config file, and
// automaxprocs ahead of starting its node.Node.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/lumeranet/ledgerengine/leader"
	"github.com/lumeranet/ledgerengine/log"
	"github.com/lumeranet/ledgerengine/metrics"
	"github.com/lumeranet/ledgerengine/node"
	"github.com/lumeranet/ledgerengine/rotation"
	"github.com/lumeranet/ledgerengine/validator"
	"github.com/lumeranet/ledgerengine/wire"
)

// logRotations subscribes to sup's rotation announcements and logs
// each one until ctx is canceled, the CLI's own consumer of
// node.Supervisor.SubscribeRotations.
func logRotations(ctx context.Context, sup *node.Supervisor) {
	ch := make(chan node.RotationNotice, 8)
	sub := sup.SubscribeRotations(ch)
	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case n := <-ch:
				log.Info("role transition", "height", n.Height, "wasLeader", n.WasLeader, "nextLeaderKnown", n.HasNext)
			case <-ctx.Done():
				return
			}
		}
	}()
}

var (
	configFlag = &cli.StringFlag{Name: "config", Usage: "path to a TOML node config file"}
	selfFlag   = &cli.StringFlag{Name: "self", Usage: "this node's hex-encoded 32-byte account id", Required: true}
	mintFlag   = &cli.StringFlag{Name: "mint", Usage: "hex-encoded treasury account id (genesis only)"}
	balanceFlag = &cli.Int64Flag{Name: "mint-balance", Usage: "treasury balance to mint at genesis", Value: 1_000_000}
)

func main() {
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debug)); err != nil {
		log.Warn("failed to set GOMAXPROCS", "err", err)
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandler(os.Stderr, false)))

	app := &cli.App{
		Name:  "ledgernode",
		Usage: "run a LedgerEngine full node",
		Flags: []cli.Flag{configFlag, selfFlag, mintFlag, balanceFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Crit("ledgernode exited with an error", "err", err)
	}
}

func run(c *cli.Context) error {
	cfg := defaultNodeConfig()
	if path := c.String(configFlag.Name); path != "" {
		if err := loadConfig(path, &cfg); err != nil {
			return err
		}
	}

	self, err := parseAccountId(c.String(selfFlag.Name))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("ledgernode: create data dir: %w", err)
	}
	ledgerPath := filepath.Join(cfg.DataDir, cfg.LedgerFile)

	fresh := false
	if fi, err := os.Stat(ledgerPath); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("ledgernode: stat ledger file: %w", err)
		}
		fresh = true
	} else {
		fresh = fi.Size() == 0
	}

	f, err := os.OpenFile(ledgerPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("ledgernode: open ledger file: %w", err)
	}
	defer f.Close()

	mint := self
	if s := c.String(mintFlag.Name); s != "" {
		mint, err = parseAccountId(s)
		if err != nil {
			return err
		}
	}
	balance := c.Int64(balanceFlag.Name)

	if fresh {
		log.Info("writing genesis ledger", "path", ledgerPath, "mint", mint, "balance", balance)
		if err := writeGenesis(f, mint, self, balance); err != nil {
			return err
		}
	}

	schedule := rotation.NewSchedule()
	schedule.Set(0, self)

	link := wire.NewMemoryLink()
	sink := metrics.NewPrometheusSink("ledgerengine", prometheus.DefaultRegisterer)

	nc := node.Config{
		Self:           self,
		Schedule:       schedule,
		Ledger:         f,
		Link:           link,
		Sink:           sink,
		GenesisMint:    mint,
		GenesisBalance: balance,
		LeaderConfig: leader.Config{
			ChunkSize:      cfg.Leader.ChunkSize,
			QueueDepth:     cfg.Leader.QueueDepth,
			TickInterval:   cfg.Leader.tickInterval(),
			TickEntryEvery: cfg.Leader.TickEntryEvery,
		},
		ValidatorConfig: validator.Config{
			WindowSize:   cfg.Validator.WindowSize,
			QueueDepth:   cfg.Validator.QueueDepth,
			VerifyBlock:  cfg.Validator.VerifyBlock,
			VoteInterval: cfg.Validator.voteInterval(),
		},
	}

	sup, err := node.New(nc)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logRotations(ctx, sup)

	log.Info("ledgernode starting", "self", c.String(selfFlag.Name), "height", sup.Height())
	if err := sup.Run(ctx); err != nil {
		return err
	}
	log.Info("ledgernode exited")
	return nil
}
