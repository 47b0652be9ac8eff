package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/selection-upload/internal/awsboot"
	"github.com/fpang/selection-upload/internal/cli"
	"github.com/fpang/selection-upload/internal/ingest"
	"github.com/fpang/selection-upload/internal/store"
)

var statusSelectionIDFlag string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a stored Selection record",
	Long: `Status reads one Selection record from the Selection table and prints it
as JSON. Exits with status 1 if the selection does not exist.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusSelectionIDFlag, "selection-id", "", "Selection to look up")
	_ = statusCmd.MarkFlagRequired("selection-id")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	awsCfg, err := awsboot.LoadAWSConfig(cmd.Context(), cfg.AWS)
	if err != nil {
		return &ingest.ConfigurationError{Field: "aws", Err: err}
	}
	clients := awsboot.NewClients(awsCfg)

	records := store.NewDynamoStore(clients.DynamoDB, store.Tables{
		Selection:     cfg.Tables.Selection,
		SelectionItem: cfg.Tables.SelectionItem,
		Events:        cfg.Tables.Events,
	})

	selection, err := records.GetSelection(cmd.Context(), statusSelectionIDFlag)
	if err != nil {
		return err
	}
	if selection == nil {
		exitCode = cli.ExitFailure
		log.Warn().Str("selectionId", statusSelectionIDFlag).Str("table", cfg.Tables.Selection).Msg("Selection not found")
		return fmt.Errorf("selection %s not found", statusSelectionIDFlag)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(selection)
}
