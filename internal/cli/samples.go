package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gkobilansky/sigcalc/internal/report"
	"github.com/gkobilansky/sigcalc/internal/stats"
	"github.com/gkobilansky/sigcalc/internal/store"
	"github.com/gkobilansky/sigcalc/internal/validate"
)

func newSamplesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Manage saved sample datasets",
		Long: `List, show, add, remove and export saved sample datasets.

Three built-in samples are always present and cannot be removed.`,
	}

	cmd.AddCommand(
		newSamplesListCmd(a),
		newSamplesShowCmd(a),
		newSamplesAddCmd(a),
		newSamplesRmCmd(a),
		newSamplesExportCmd(a),
	)
	return cmd
}

func newSamplesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved samples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s store.Store) error {
				samples, err := s.ListSamples(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list samples: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(samples) == 0 {
					fmt.Fprintln(out, "No samples found.")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tA\tB\tLEVEL\tDESCRIPTION")
				for _, sample := range samples {
					name := sample.Name
					if sample.BuiltIn {
						name += " *"
					}
					fmt.Fprintf(w, "%s\t%d/%d\t%d/%d\t%s\t%s\n",
						name,
						sample.ConversionsA, sample.VisitorsA,
						sample.ConversionsB, sample.VisitorsB,
						sample.ConfidenceLevel, sample.Description)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, "* built-in")
				return nil
			})
		},
	}
}

func newSamplesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a sample and its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := a.loadSample(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n\n", sample.Name, sample.Description)

			in := sample.TestInput()
			return printReport(out, report.Build(in, stats.Calculate(in), a.locale()))
		},
	}
}

func newSamplesAddCmd(a *app) *cobra.Command {
	var (
		description string
		confidence  string
		counts      [4]int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save a new sample",
		Long: `Save a named sample dataset.

Example:
  sigcalc samples add checkout-redesign --visitors-a 1200 --conversions-a 96 \
    --visitors-b 1180 --conversions-b 118 --description "New checkout flow"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"visitors-a", "conversions-a", "visitors-b", "conversions-b"} {
				if !cmd.Flags().Changed(name) {
					return fmt.Errorf("missing required flag: --%s", name)
				}
			}

			level := stats.ConfidenceLevel(a.cfg.DefaultConfidence)
			if confidence != "" {
				parsed, err := stats.ParseConfidenceLevel(confidence)
				if err != nil {
					return err
				}
				level = parsed
			}

			in, err := validate.FromCounts(counts[0], counts[1], counts[2], counts[3], string(level))
			if err != nil {
				return err
			}
			sample, err := validate.NewSample(args[0], description, in)
			if err != nil {
				return err
			}

			return a.withStore(func(s store.Store) error {
				created, err := s.CreateSample(cmd.Context(), store.Sample{
					Name:            sample.Name,
					Description:     sample.Description,
					VisitorsA:       sample.Input.VisitorsA,
					ConversionsA:    sample.Input.ConversionsA,
					VisitorsB:       sample.Input.VisitorsB,
					ConversionsB:    sample.Input.ConversionsB,
					ConfidenceLevel: sample.Input.ConfidenceLevel,
				})
				if errors.Is(err, store.ErrExists) {
					return fmt.Errorf("sample '%s' already exists", sample.Name)
				}
				if err != nil {
					return err
				}
				a.logger.Debug("sample saved", "name", created.Name)
				fmt.Fprintf(cmd.OutOrStdout(), "Saved sample '%s'\n", created.Name)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&counts[0], "visitors-a", 0, "visitors in variant A")
	flags.IntVar(&counts[1], "conversions-a", 0, "conversions in variant A")
	flags.IntVar(&counts[2], "visitors-b", 0, "visitors in variant B")
	flags.IntVar(&counts[3], "conversions-b", 0, "conversions in variant B")
	flags.StringVarP(&confidence, "confidence", "c", "", "confidence level: 90, 95 or 99")
	flags.StringVarP(&description, "description", "d", "", "short description")
	return cmd
}

func newSamplesRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a saved sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return a.withStore(func(s store.Store) error {
				err := s.DeleteSample(cmd.Context(), name)
				switch {
				case errors.Is(err, store.ErrNotFound):
					return fmt.Errorf("sample '%s' not found", name)
				case errors.Is(err, store.ErrBuiltIn):
					return fmt.Errorf("sample '%s' is built in and cannot be removed", name)
				case err != nil:
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed sample '%s'\n", name)
				return nil
			})
		},
	}
}

func newSamplesExportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export samples with their results",
		Long: `Export every saved sample together with its computed result in CSV
or JSON format.

Examples:
  sigcalc samples export --format csv > samples.csv
  sigcalc samples export --format json > samples.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("invalid format: must be 'csv' or 'json'")
			}
			return a.withStore(func(s store.Store) error {
				return exportSamples(cmd.Context(), s, cmd.OutOrStdout(), format)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format (csv or json)")
	return cmd
}

func exportSamples(ctx context.Context, s store.Store, out io.Writer, format string) error {
	samples, err := s.ListSamples(ctx)
	if err != nil {
		return fmt.Errorf("failed to list samples: %w", err)
	}
	if format == "csv" {
		return exportCSV(out, samples)
	}
	return exportJSON(out, samples)
}

func exportCSV(out io.Writer, samples []*store.Sample) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{
		"name", "visitors_a", "conversions_a", "visitors_b", "conversions_b",
		"confidence_level", "z_score", "p_value", "relative_improvement", "verdict",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, sample := range samples {
		result := stats.Calculate(sample.TestInput())
		row := []string{
			sample.Name,
			strconv.Itoa(sample.VisitorsA),
			strconv.Itoa(sample.ConversionsA),
			strconv.Itoa(sample.VisitorsB),
			strconv.Itoa(sample.ConversionsB),
			string(sample.ConfidenceLevel),
			formatFloat(result.ZScore),
			formatFloat(result.PValue),
			formatFloat(result.RelativeImprovement),
			string(result.Verdict()),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

type jsonExport struct {
	Samples []jsonSample `json:"samples"`
}

type jsonSample struct {
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	BuiltIn         bool                  `json:"builtIn"`
	VisitorsA       int                   `json:"visitorsA"`
	ConversionsA    int                   `json:"conversionsA"`
	VisitorsB       int                   `json:"visitorsB"`
	ConversionsB    int                   `json:"conversionsB"`
	ConfidenceLevel stats.ConfidenceLevel `json:"confidenceLevel"`
	Result          report.Payload        `json:"result"`
}

func exportJSON(out io.Writer, samples []*store.Sample) error {
	export := jsonExport{
		Samples: make([]jsonSample, len(samples)),
	}

	for i, sample := range samples {
		export.Samples[i] = jsonSample{
			Name:            sample.Name,
			Description:     sample.Description,
			BuiltIn:         sample.BuiltIn,
			VisitorsA:       sample.VisitorsA,
			ConversionsA:    sample.ConversionsA,
			VisitorsB:       sample.VisitorsB,
			ConversionsB:    sample.ConversionsB,
			ConfidenceLevel: sample.ConfidenceLevel,
			Result:          report.NewPayload(stats.Calculate(sample.TestInput())),
		}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// formatFloat leaves non-finite values empty.
func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
