package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/core/ports"
)

const ReporterTypeText = "text"

type Config struct {
	NoColor bool
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

var _ ports.Reporter = (*Reporter)(nil)

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	if cfg.NoColor || !isTerminal(os.Stdout) {
		color.NoColor = true
	}
	return &Reporter{
		config: cfg,
		writer: os.Stdout,
		logger: logger,
	}, nil
}

// NewReporterTo is used by tests to capture output.
func NewReporterTo(w io.Writer, cfg Config, logger ports.Logger) *Reporter {
	return &Reporter{config: cfg, writer: w, logger: logger}
}

func isTerminal(f *os.File) bool {
	stat, _ := f.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (r *Reporter) Report(ctx context.Context, findings []domain.DriftFinding, meta domain.RunMetadata) error {
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	magenta := color.New(color.FgMagenta).SprintFunc()

	fmt.Fprintln(r.writer, "Drift Analysis Report")
	fmt.Fprintln(r.writer, "=====================")
	fmt.Fprintf(r.writer, "Source: %s (%s)\n", meta.Source, meta.StatePath)
	if meta.Region != "" {
		fmt.Fprintf(r.writer, "Region: %s\n", meta.Region)
	}
	if meta.TerraformVersion != "" {
		fmt.Fprintf(r.writer, "Terraform version: %s\n", meta.TerraformVersion)
	}
	fmt.Fprintln(r.writer)

	if len(findings) == 0 {
		fmt.Fprintln(r.writer, "No resources found or processed.")
		return nil
	}

	// Highest severity first, then stable by address.
	sorted := make([]domain.DriftFinding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity != sorted[j].Severity {
			return sorted[i].Severity > sorted[j].Severity
		}
		return sorted[i].Address() < sorted[j].Address()
	})

	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "Status\tSeverity\tResource\tDetails")
	fmt.Fprintln(tw, "------\t--------\t--------\t-------")

	var cleanCount, driftedCount, deletedCount int
	for _, finding := range sorted {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var status, details string
		switch {
		case !finding.HasDrift:
			cleanCount++
			status = green("[OK]")
			details = "No drift detected."
		case finding.Kind == domain.FindingResourceDeleted:
			deletedCount++
			status = magenta("[DELETED]")
			details = finding.Message
		default:
			driftedCount++
			status = red("[DRIFT]")
			details = r.formatDriftDetails(finding.DriftedAttributes)
		}

		severity := finding.Severity.String()
		switch finding.Severity {
		case domain.SeverityCritical, domain.SeverityHigh:
			severity = red(severity)
		case domain.SeverityMedium:
			severity = yellow(severity)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", status, severity, finding.Address(), details)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(r.writer)
	fmt.Fprintln(r.writer, "Summary:")
	fmt.Fprintln(r.writer, "-------")
	fmt.Fprintf(r.writer, "Total resources checked: %d\n", len(findings))
	fmt.Fprintf(r.writer, "Clean: %s\n", green(cleanCount))
	fmt.Fprintf(r.writer, "Drifted: %s\n", red(driftedCount))
	fmt.Fprintf(r.writer, "Deleted: %s\n", magenta(deletedCount))
	return nil
}

func (r *Reporter) formatDriftDetails(drifts []domain.AttributeDrift) string {
	if len(drifts) == 0 {
		return "Drift detected but no specific differences recorded."
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "%d attribute(s) differ: ", len(drifts))
	for i, drift := range drifts {
		if i > 0 {
			builder.WriteString("; ")
		}
		fmt.Fprintf(&builder, "%s=[declared: %s, observed: %s]",
			drift.Attribute,
			truncate(drift.DesiredValue.StringForm()),
			truncate(drift.ObservedValue.StringForm()))
	}
	return builder.String()
}

func truncate(s string) string {
	const maxLen = 100
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}
