package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielhkuo/ballotcheck/auth"
	"github.com/danielhkuo/ballotcheck/dataset"
	"github.com/danielhkuo/ballotcheck/export"
	"github.com/danielhkuo/ballotcheck/logging"
	"github.com/danielhkuo/ballotcheck/models"
	"github.com/danielhkuo/ballotcheck/reference"
	"github.com/danielhkuo/ballotcheck/validation"
)

type checkOptions struct {
	constituency  string
	partyList     string
	bundle        string
	referencePath string
	xlsxPath      string
	jsonOut       bool
	strictTurnout bool
	logLevel      string
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate dataset files and print a report",
		Long: `Validates the constituency and party-list datasets, given either as two
JSON files or as one generated JavaScript bundle.

Exit status is 0 for a valid report, 1 when the report has violations and
2 when the inputs could not be read.`,
		Example: `  ballotcheck check --constituency const.json --party-list pl.json --reference ref.yaml
  ballotcheck check --bundle data.js --reference ref.yaml --xlsx report.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.constituency, "constituency", "", "Constituency dataset JSON file")
	f.StringVar(&opts.partyList, "party-list", "", "Party-list dataset JSON file")
	f.StringVar(&opts.bundle, "bundle", "", "JavaScript bundle holding both datasets")
	f.StringVar(&opts.referencePath, "reference", os.Getenv("REFERENCE_PATH"), "Reference tables YAML file")
	f.StringVar(&opts.xlsxPath, "xlsx", "", "Also write the report to this XLSX file")
	f.BoolVar(&opts.jsonOut, "json", false, "Print the report as JSON")
	f.BoolVar(&opts.strictTurnout, "strict-turnout", false, "Treat turnout ratio mismatches as violations")
	f.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.MarkFlagsMutuallyExclusive("bundle", "constituency")
	cmd.MarkFlagsMutuallyExclusive("bundle", "party-list")
	cmd.MarkFlagsRequiredTogether("constituency", "party-list")
	return cmd
}

func runCheck(cmd *cobra.Command, opts checkOptions) error {
	flush, err := logging.Setup(opts.logLevel, consoleLogs)
	if err != nil {
		return usageError("%v", err)
	}
	defer flush()

	if opts.bundle == "" && opts.constituency == "" {
		return usageError("either --bundle or --constituency and --party-list is required")
	}
	if opts.referencePath == "" {
		return usageError("--reference is required")
	}

	ref, err := reference.Load(opts.referencePath)
	if err != nil {
		return usageError("%v", err)
	}
	var vopts []validation.Option
	if opts.strictTurnout {
		vopts = append(vopts, validation.WithStrictTurnoutRatio())
	}
	v, err := validation.New(ref, vopts...)
	if err != nil {
		return usageError("%s: %v", opts.referencePath, err)
	}

	var constituency, partyList []models.RawRecord
	var inputs []string
	if opts.bundle != "" {
		constituency, partyList, err = dataset.LoadBundle(opts.bundle)
		inputs = []string{opts.bundle}
	} else {
		constituency, partyList, err = dataset.LoadFiles(cmd.Context(), opts.constituency, opts.partyList)
		inputs = []string{opts.constituency, opts.partyList}
	}
	if err != nil {
		return usageError("%v", err)
	}

	start := time.Now()
	report := v.Validate(constituency, partyList)
	zap.S().Infow("Validation finished",
		"valid", report.Valid,
		"violations", len(report.Violations),
		"warnings", len(report.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if opts.xlsxPath != "" {
		run, err := newLocalRun(report, ref, inputs)
		if err != nil {
			return usageError("%v", err)
		}
		if err := writeXLSXFile(opts.xlsxPath, run); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}

	if !report.Valid {
		return &exitError{code: exitViolations}
	}
	return nil
}

// newLocalRun wraps a report for export. Local runs are not signed.
func newLocalRun(report models.ValidationReport, ref models.Reference, inputs []string) (models.ValidationRun, error) {
	parts := make([][]byte, 0, len(inputs)+1)
	for _, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return models.ValidationRun{}, err
		}
		parts = append(parts, data)
	}
	fingerprint, err := auth.ReferenceFingerprint(ref)
	if err != nil {
		return models.ValidationRun{}, err
	}
	parts = append(parts, fingerprint)

	return models.ValidationRun{
		ID:         auth.GenerateRunID(),
		InputsHash: auth.HashInputs(parts...),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		Report:     report,
	}, nil
}

func writeXLSXFile(path string, run models.ValidationRun) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, run); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// printReport writes a plain-text report, one finding per line.
func printReport(w io.Writer, report models.ValidationReport) {
	status := "VALID"
	if !report.Valid {
		status = "INVALID"
	}
	fmt.Fprintf(w, "%s: %d constituency, %d party-list records; %d violations, %d warnings\n",
		status, report.Summary.ConstituencyCount, report.Summary.PartyListCount,
		len(report.Violations), len(report.Warnings))

	for _, v := range report.Violations {
		fmt.Fprintf(w, "  ERROR %s %s\n", findingLocation(v.Dataset, v.RecordID, v.Positions, v.Field),
			v.Rule)
		fmt.Fprintf(w, "        %s\n", v.Detail)
	}
	for _, wr := range report.Warnings {
		var positions []int
		if wr.Position != nil {
			positions = []int{*wr.Position}
		}
		fmt.Fprintf(w, "  WARN  %s %s\n", findingLocation(wr.Dataset, wr.RecordID, positions, wr.Field),
			wr.Kind)
		fmt.Fprintf(w, "        %s\n", wr.Detail)
	}
}

func findingLocation(dataset, recordID string, positions []int, field string) string {
	var b strings.Builder
	b.WriteString(dataset)
	for i, p := range positions {
		if i == 0 {
			b.WriteString(" #")
		} else {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%d", p)
	}
	if recordID != "" {
		b.WriteString(" " + recordID)
	}
	if field != "" {
		b.WriteString("." + field)
	}
	return b.String()
}
