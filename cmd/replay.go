package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/config"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/journal"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/repository"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/telemetry"
)

func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [checkout-id]",
		Short: "Rebuild a checkout snapshot from its action journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pretty, _ := cmd.Flags().GetBool("pretty")
			return replay(cmd.Context(), args[0], pretty)
		},
	}

	cmd.Flags().BoolP("pretty", "p", false, "Indent the snapshot")

	return cmd
}

func replay(ctx context.Context, checkoutID string, pretty bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := telemetry.InitLogger(); err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	codec := journal.NewCodec()
	state.RegisterPayloads(codec)

	actions, err := journal.Load(ctx, repository.NewActionJournalRepository(db), codec, checkoutID)
	if err != nil {
		return err
	}
	telemetry.Logger.Info("Replaying checkout journal",
		zap.String("checkout_id", checkoutID),
		zap.Int("actions", len(actions)),
	)

	snapshot := store.Replay(state.Initial(), state.Reduce, actions)

	var out []byte
	if pretty {
		out, err = json.MarshalIndent(snapshot, "", "  ")
	} else {
		out, err = json.Marshal(snapshot)
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
