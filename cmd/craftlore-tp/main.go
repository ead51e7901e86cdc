// Command craftlore-tp runs the CraftLore transaction engine over a
// newline-delimited JSON transaction stream. Each input line is one
// signed transaction; the engine applies it atomically against the
// configured state store and reports the outcome on stdout.
//
// The stream form is transport-agnostic on purpose: a validator shim,
// a replay tool or a test harness all speak the same three-field JSON.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/craftlore/craftlore-go/internal/config"
	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/engine/listeners"
	"github.com/craftlore/craftlore-go/internal/migrations"
	"github.com/craftlore/craftlore-go/internal/state"
	"github.com/craftlore/craftlore-go/internal/state/postgres"
)

// inputTransaction is one line of the transaction stream.
type inputTransaction struct {
	Payload         json.RawMessage `json:"payload"`
	SignerPublicKey string          `json:"signer_public_key"`
	Signature       string          `json:"signature"`
}

type result struct {
	Signature string `json:"signature"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

func main() {
	configPath := flag.String("config", "craftlore.yaml", "Path to configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Missing config file falls back to the shipped defaults.
		if !os.IsNotExist(unwrapPathError(err)) {
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = config.Default()
		slog.Info("No config file found, using defaults", "path", *configPath)
	}

	store, cleanup, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize state store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	manager := engine.NewManager()
	listeners.RegisterAll(manager, cfg)
	handler := engine.NewHandler(manager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	if err := run(ctx, handler, store, os.Stdin, os.Stdout); err != nil {
		slog.Error("Transaction stream stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}

// openStore selects PostgreSQL when a DSN is configured, the in-memory
// store otherwise.
func openStore(cfg config.Config) (state.Store, func(), error) {
	if cfg.Database.DSN == "" {
		slog.Info("Using in-memory state store")
		return state.NewMemory(), func() {}, nil
	}

	adapter, err := postgres.NewAdapter(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunMigrations(adapter.DB(), cfg.Database.AutoMigrate); err != nil {
		adapter.Close()
		return nil, nil, err
	}
	return adapter, func() {
		if err := adapter.Close(); err != nil {
			slog.Error("Failed to close state store", "error", err)
		}
	}, nil
}

// run applies transactions from the input stream until EOF or context
// cancellation. Each transaction commits or rolls back on its own; a
// failed transaction never stops the stream.
func run(ctx context.Context, handler *engine.Handler, store state.Store, in *os.File, out *os.File) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var input inputTransaction
		if err := json.Unmarshal(line, &input); err != nil {
			slog.Warn("Skipping malformed transaction line", "error", err)
			continue
		}

		tx := engine.Transaction{
			Payload:         input.Payload,
			SignerPublicKey: input.SignerPublicKey,
			Signature:       input.Signature,
		}
		applyErr := store.Apply(ctx, func(provider state.Provider) error {
			_, err := handler.Apply(ctx, tx, provider)
			return err
		})

		res := result{Signature: input.Signature, Status: "committed"}
		if applyErr != nil {
			res.Status = "rejected"
			res.Error = applyErr.Error()
			slog.Info("Transaction rejected", "signature", input.Signature, "error", applyErr)
		} else {
			slog.Debug("Transaction committed", "signature", input.Signature)
		}
		if err := encoder.Encode(res); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func unwrapPathError(err error) error {
	for {
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return err
		}
		next := u.Unwrap()
		if next == nil {
			return err
		}
		err = next
	}
}
