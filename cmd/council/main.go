// Command council runs one Paxos council member as a standalone process.
// Peer identity, listen address, address book, and fault-injection profile
// come from the environment (see internal/council.Config); an optional
// -propose flag drives one election from this process before it settles
// into serving requests.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/paxos-council/council/internal/council"
	obserrors "github.com/paxos-council/council/internal/obs/errors"
	"github.com/paxos-council/council/internal/obs/logger"
)

func main() {
	propose := flag.String("propose", "", "if set, start an election for this value after listening begins")
	flag.Parse()

	log := logger.Init(logger.Config{Level: "INFO", Format: "TEXT"})

	if err := run(*propose, log); err != nil {
		log.Error("council exited with error", "error", err)
		os.Exit(1)
	}
}

func run(propose string, log *slog.Logger) error {
	cfg, err := council.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	book, err := council.LoadAddressBook(cfg.AddressBookPath)
	if err != nil {
		return fmt.Errorf("load address book: %w", err)
	}

	profile, err := council.ParseBehavior(cfg.Behavior)
	if err != nil {
		return err
	}

	member := council.New(cfg.ID, cfg.ListenAddr, book, profile, cfg.PaxosTimeouts(), log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := member.Listen(ctx); err != nil {
		st := obserrors.GRPCStatus(err)
		log.Error("listen failed", "grpc_code", st.Code().String(), "message", st.Message())
		return fmt.Errorf("listen: %w", err)
	}
	log.Info("council member listening", "id", cfg.ID, "addr", cfg.ListenAddr, "behavior", cfg.Behavior)

	if propose != "" {
		ok, chosen := member.StartElection(ctx, propose)
		log.Info("election finished", "ok", ok, "chosen", chosen)
	}

	<-ctx.Done()
	member.Shutdown()
	return nil
}
