package main

import (
	"encoding/json"
	"fmt"
	"io"

	"hubhook/internal/channel"
	"hubhook/internal/eventlog"

	"github.com/spf13/cobra"
)

var (
	eventsChannel string
	eventsLimit   int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print a persisted event log",
	Long: `Read the event log written by a file or sqlite store and print it as
indented JSON, newest first.`,
	Example: `  hubhook events --store file --store-path ./events.json
  hubhook events --store sqlite --channel instagram --limit 10`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	f := eventsCmd.Flags()
	f.String("store", "", "Event store driver: file or sqlite")
	f.String("store-path", "", "Path of the event store")
	f.StringVar(&eventsChannel, "channel", "", "Only show events from this channel")
	f.IntVarP(&eventsLimit, "limit", "n", 0, "Show at most this many events (0 for all)")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Store.Driver == eventlog.DriverMemory {
		return fmt.Errorf("the memory store is not persisted; use --store file or --store sqlite")
	}

	var only channel.Channel
	if eventsChannel != "" {
		if only, err = channel.Parse(eventsChannel); err != nil {
			return err
		}
	}
	if eventsLimit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	store, err := eventlog.Open(cfg.Store.Driver, cfg.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open event store: %w", err)
	}
	defer store.Close()

	records, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	return printRecords(cmd.OutOrStdout(), filterRecords(records, only, eventsLimit))
}

// filterRecords keeps records from only (all channels when empty), up to limit
func filterRecords(records []eventlog.Record, only channel.Channel, limit int) []eventlog.Record {
	out := make([]eventlog.Record, 0, len(records))
	for _, r := range records {
		if only != "" && r.Source != only {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func printRecords(w io.Writer, records []eventlog.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
