package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"record-collection/core/config"
	"record-collection/core/logger"
	"record-collection/feature/records"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the collection through the configured transport",
	Long: `Loads the collection once through the configured transport and prints the
records in collection order. --comparator and --direction override the
configured sort.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if comparator, _ := cmd.Flags().GetString("comparator"); comparator != "" {
			cfg.Collection.Comparator = comparator
		}
		if direction, _ := cmd.Flags().GetString("direction"); direction != "" {
			cfg.Collection.Direction = direction
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		coll, dispatcher, err := buildCollection(ctx, cfg, logg)
		if err != nil {
			return err
		}
		svc := records.NewService(coll, dispatcher, logg)

		if err := svc.Fetch(ctx, true); err != nil {
			return err
		}

		summary := svc.Summary()
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}

		dirs := make([]string, len(summary.Direction))
		for i, d := range summary.Direction {
			dirs[i] = string(d)
		}
		logg.Info("Collection fetched",
			zap.Int("records", len(summary.Records)),
			zap.String("comparator", strings.Join(summary.Comparator, ",")),
			zap.String("direction", strings.Join(dirs, ",")),
		)
		for i, rec := range summary.Records {
			logg.Info("Record", zap.Int("position", i), zap.Any("attributes", rec))
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("comparator", "", "Comma separated sort attributes")
	fetchCmd.Flags().String("direction", "", "Comma separated asc/desc per sort attribute")
	fetchCmd.Flags().Bool("json", false, "Print the collection as JSON")
	RootCmd.AddCommand(fetchCmd)
}
