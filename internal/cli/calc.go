package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/gkobilansky/sigcalc/internal/report"
	"github.com/gkobilansky/sigcalc/internal/stats"
	"github.com/gkobilansky/sigcalc/internal/store"
	"github.com/gkobilansky/sigcalc/internal/validate"
)

type calcOptions struct {
	visitorsA    int
	conversionsA int
	visitorsB    int
	conversionsB int
	confidence   string
	sample       string
	format       string
	interactive  bool
}

// countFlags maps each count flag to its option field.
func (o *calcOptions) countFlags() []struct {
	name string
	dst  *int
} {
	return []struct {
		name string
		dst  *int
	}{
		{"visitors-a", &o.visitorsA},
		{"conversions-a", &o.conversionsA},
		{"visitors-b", &o.visitorsB},
		{"conversions-b", &o.conversionsB},
	}
}

func newCalcCmd(a *app) *cobra.Command {
	opts := &calcOptions{}

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Test two variants for a significant difference",
		Long: `Calculate the statistical significance of an A/B test.

Counts come from flags, a saved sample, or interactive prompts. Flags
given alongside --sample override the sample's values.

Examples:
  sigcalc calc --visitors-a 5000 --conversions-a 500 --visitors-b 5000 --conversions-b 550
  sigcalc calc --sample strong-lift --confidence 99
  sigcalc calc --interactive
  sigcalc calc --sample small-sample --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCalc(cmd, opts)
		},
	}

	flags := cmd.Flags()
	for _, f := range opts.countFlags() {
		flags.IntVar(f.dst, f.name, 0, strings.ReplaceAll(f.name, "-", " ")+" count")
	}
	flags.StringVarP(&opts.confidence, "confidence", "c", "", "confidence level: 90, 95 or 99 (default from config)")
	flags.StringVarP(&opts.sample, "sample", "s", "", "start from a saved sample")
	flags.StringVarP(&opts.format, "format", "f", "text", "output format (text or json)")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "prompt for missing values")

	return cmd
}

func (a *app) runCalc(cmd *cobra.Command, opts *calcOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("invalid format: must be 'text' or 'json'")
	}

	set := make(map[string]bool)
	for _, f := range opts.countFlags() {
		set[f.name] = cmd.Flags().Changed(f.name)
	}

	level := a.cfg.DefaultConfidence
	if opts.sample != "" {
		sample, err := a.loadSample(cmd.Context(), opts.sample)
		if err != nil {
			return err
		}
		fromSample := []int{sample.VisitorsA, sample.ConversionsA, sample.VisitorsB, sample.ConversionsB}
		for i, f := range opts.countFlags() {
			if !set[f.name] {
				*f.dst = fromSample[i]
				set[f.name] = true
			}
		}
		level = string(sample.ConfidenceLevel)
	}

	if opts.confidence != "" {
		parsed, err := stats.ParseConfidenceLevel(opts.confidence)
		if err != nil {
			return err
		}
		level = string(parsed)
	} else if opts.interactive {
		picked, err := promptLevel(stats.ConfidenceLevel(level))
		if err != nil {
			return err
		}
		level = string(picked)
	}

	var missing []string
	for _, f := range opts.countFlags() {
		if set[f.name] {
			continue
		}
		if !opts.interactive {
			missing = append(missing, "--"+f.name)
			continue
		}
		v, err := promptCount(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flags: %s (or use --sample or --interactive)", strings.Join(missing, ", "))
	}

	in, err := validate.FromCounts(opts.visitorsA, opts.conversionsA, opts.visitorsB, opts.conversionsB, level)
	if err != nil {
		return err
	}

	result := stats.Calculate(in)
	if err := result.Check(); err != nil {
		a.logger.Error("calculation produced an invalid result", "error", err)
		return fmt.Errorf("error calculating statistical significance: %w", err)
	}
	a.logger.Debug("calculated", "verdict", result.Verdict(), "z", result.ZScore, "p", result.PValue)

	if opts.format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report.NewPayload(result))
	}
	return printReport(cmd.OutOrStdout(), report.Build(in, result, a.locale()))
}

func (a *app) loadSample(ctx context.Context, name string) (*store.Sample, error) {
	var sample *store.Sample
	err := a.withStore(func(s store.Store) error {
		var err error
		sample, err = s.GetSample(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("sample '%s' not found", name)
		}
		return err
	})
	return sample, err
}

func printReport(out io.Writer, r report.Report) error {
	l := report.Labels(r.Locale)

	fmt.Fprintln(out, r.Headline)
	fmt.Fprintln(out, r.Summary)
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\t%s\t%s\t%s\t%s\n", l["Visitors"], l["Conversions"], l["Conversion rates"], l["Likely range"])
	fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", l["Variant A"], r.Input.VisitorsA, r.Input.ConversionsA, r.RateA, r.RangeA)
	fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", l["Variant B"], r.Input.VisitorsB, r.Input.ConversionsB, r.RateB, r.RangeB)
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s:\t%s\n", l["Relative improvement"], r.Improvement)
	fmt.Fprintf(w, "%s:\t%s\n", l["P-value"], r.PValue)
	fmt.Fprintf(w, "%s:\t%s\n", l["Z-score"], r.ZScore)
	fmt.Fprintf(w, "%s:\t%s\n", l["Confidence level"], r.ConfidenceLevel)
	fmt.Fprintf(w, "%s:\t%s\n", l["Confidence interval"], r.Interval)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, l["What this means"])
	for _, line := range r.Interpretation {
		fmt.Fprintf(out, "  %s\n", line)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s: %s\n", l["Recommendation"], r.Recommendation)
	return nil
}

func promptCount(flag string) (int, error) {
	label := strings.ReplaceAll(flag, "-", " ")
	positive := strings.HasPrefix(flag, "visitors")

	prompt := promptui.Prompt{
		Label: strings.ToUpper(label[:1]) + label[1:],
		Validate: func(s string) error {
			return validate.Count(s, positive)
		},
	}

	raw, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			os.Exit(0)
		}
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func promptLevel(current stats.ConfidenceLevel) (stats.ConfidenceLevel, error) {
	items := make([]string, len(stats.ConfidenceLevels))
	cursor := 0
	for i, level := range stats.ConfidenceLevels {
		items[i] = fmt.Sprintf("%.0f%%", level.Percent())
		if level == current {
			cursor = i
		}
	}

	prompt := promptui.Select{
		Label:     "Confidence level",
		Items:     items,
		CursorPos: cursor,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			os.Exit(0)
		}
		return "", err
	}
	return stats.ConfidenceLevels[idx], nil
}
