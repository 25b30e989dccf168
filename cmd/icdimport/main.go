// Command icdimport maintains the imported portion of the disease
// dataset from ICD classification exports.
//
// Subcommands:
//
//	prepare  convert a raw tab-delimited ICD-11 release export into an
//	         import-ready CSV
//	import   convert an import-ready CSV/JSON into disease records and
//	         write (or merge into) a dataset file
//	refresh  full pipeline: prepare, import, merge with curated records,
//	         validate, and write the refresh state file
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gramhealth/assistant/internal/dataset"
	"github.com/gramhealth/assistant/internal/icd"
	"github.com/gramhealth/assistant/internal/logging"
)

const defaultSourceLabel = "ICD-11 classification"

func main() {
	logger := logging.Must(logging.Config{Level: "info"})
	defer func() { _ = logger.Sync() }()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: icdimport <prepare|import|refresh> [flags]")
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "prepare":
		err = runPrepare(os.Args[2:], logger)
	case "import":
		err = runImport(os.Args[2:], logger)
	case "refresh":
		err = runRefresh(os.Args[2:], logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("icdimport failed", logging.Error(err))
	}
}

func runPrepare(args []string, logger logging.Logger) error {
	fs := flag.NewFlagSet("prepare", flag.ExitOnError)
	source := fs.String("source", "", "raw tab-delimited ICD-11 release export")
	output := fs.String("output", "icd_import_ready.csv", "import-ready CSV output path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *source == "" {
		return fmt.Errorf("-source is required")
	}

	summary, err := icd.PrepareCSV(*source, *output)
	if err != nil {
		return err
	}
	logger.Info("import-ready CSV written",
		logging.Int("prepared_rows", summary.PreparedRows),
		logging.Int("skipped_by_chapter", summary.SkippedByChapter),
		logging.String("output", summary.OutputCSV),
	)
	return nil
}

func runImport(args []string, logger logging.Logger) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	input := fs.String("input", "", "import-ready CSV or JSON export")
	output := fs.String("output", "data/diseases.json", "disease dataset output path")
	templates := fs.String("templates", "data/icd_templates.json", "guidance template file")
	merge := fs.Bool("merge", false, "merge with the existing output file by record id")
	limit := fs.Int("limit", 0, "import at most this many rows (0 = all)")
	sourceLabel := fs.String("source-label", defaultSourceLabel, "source label recorded on each entry")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("-input is required")
	}

	summary, err := icd.Import(icd.ImportOptions{
		InputPath:     *input,
		OutputPath:    *output,
		TemplatePath:  *templates,
		MergeExisting: *merge,
		Limit:         *limit,
		SourceLabel:   *sourceLabel,
		Columns:       icd.DefaultColumns(),
	})
	if err != nil {
		return err
	}
	logger.Info("dataset written",
		logging.Int("input_rows", summary.InputRows),
		logging.Int("written_rows", summary.WrittenRows),
		logging.String("output", summary.OutputPath),
	)
	return nil
}

func runRefresh(args []string, logger logging.Logger) error {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	source := fs.String("source", "", "raw tab-delimited ICD-11 release export")
	datasetPath := fs.String("dataset", "data/diseases.json", "disease dataset to refresh in place")
	templates := fs.String("templates", "data/icd_templates.json", "guidance template file")
	release := fs.String("release", "", "ICD release identifier recorded in the state file")
	statePath := fs.String("state", "data/icd_refresh_state.json", "refresh state output path")
	minICDRows := fs.Int("min-icd-rows", 5000, "fail if fewer imported rows survive the refresh")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *source == "" || *release == "" {
		return fmt.Errorf("-source and -release are required")
	}

	workDir, err := os.MkdirTemp("", "icdrefresh")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	prepared := filepath.Join(workDir, "import_ready.csv")
	prepareSummary, err := icd.PrepareCSV(*source, prepared)
	if err != nil {
		return err
	}
	logger.Info("release export prepared", logging.Int("rows", prepareSummary.PreparedRows))

	importedPath := filepath.Join(workDir, "imported.json")
	if _, err := icd.Import(icd.ImportOptions{
		InputPath:    prepared,
		OutputPath:   importedPath,
		TemplatePath: *templates,
		SourceLabel:  defaultSourceLabel,
		Columns:      icd.DefaultColumns(),
	}); err != nil {
		return err
	}

	existing, err := dataset.LoadDiseases(*datasetPath)
	if err != nil {
		return err
	}
	imported, err := dataset.LoadDiseases(importedPath)
	if err != nil {
		return err
	}

	combined := icd.MergeCuratedWithICD(existing, imported)
	total, icdRows, err := icd.ValidateRecords(combined, *minICDRows)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(combined, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(*datasetPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *datasetPath, err)
	}
	if err := icd.WriteRefreshState(*statePath, *release, total, icdRows); err != nil {
		return err
	}

	logger.Info("dataset refreshed",
		logging.String("release", *release),
		logging.Int("total_rows", total),
		logging.Int("icd_rows", icdRows),
	)
	return nil
}
