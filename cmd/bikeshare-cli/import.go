package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bikeshare/internal/dataset"
	"bikeshare/internal/services"
	"bikeshare/internal/storage"
)

var (
	importURL  string
	importFile string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the dataset into the SQLite snapshot",
	Long: `Fetches the dataset from a URL (default DATASET_URL) or reads a local CSV
file and replaces the SQLite snapshot with its records.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importURL, "url", "", "dataset CSV URL")
	importCmd.Flags().StringVar(&importFile, "file", "", "local dataset CSV file")
	importCmd.MarkFlagsMutuallyExclusive("url", "file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var src dataset.Source
	switch {
	case importFile != "":
		src = dataset.FileSource{Path: importFile}
	case importURL != "":
		src = dataset.NewHTTPSource(importURL, appConfig.FetchTimeout)
	case appConfig.DatasetURL != "":
		src = dataset.NewHTTPSource(appConfig.DatasetURL, appConfig.FetchTimeout)
	default:
		return errors.New("one of --url or --file is required")
	}

	repo, err := storage.NewSQLiteRepository(appConfig.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer repo.Close()

	info, err := services.NewImportService(repo, nil).Import(cmd.Context(), src, services.TriggerCLI)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s records from %s\n", humanize.Comma(int64(info.Records)), info.Source)
	fmt.Fprintf(cmd.OutOrStdout(), "Dates: %s to %s\n", info.MinDate, info.MaxDate)
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot: %s (import %s)\n", appConfig.SQLiteDBPath, info.ID)

	if version, dirty, err := storage.SchemaVersion(appConfig.SQLiteDBPath); err == nil {
		state := "clean"
		if dirty {
			state = "dirty"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema: v%d (%s)\n", version, state)
	}
	return nil
}
