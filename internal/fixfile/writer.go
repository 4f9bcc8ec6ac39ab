// Package fixfile renders synthesized fix actions into an annotated
// .tf file for manual review.
package fixfile

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/core/ports"
	"github.com/driftsentry/driftsentry/internal/errors"
)

const DefaultOutputFile = "terraform_fixes.tf"

type Writer struct {
	outputPath string
	logger     ports.Logger
	now        func() time.Time
}

var _ ports.FixWriter = (*Writer)(nil)

func NewWriter(outputPath string, logger ports.Logger) *Writer {
	if outputPath == "" {
		outputPath = DefaultOutputFile
	}
	return &Writer{outputPath: outputPath, logger: logger, now: time.Now}
}

func (w *Writer) Write(ctx context.Context, actions []domain.FixAction, summary string) (string, error) {
	if len(actions) == 0 {
		return "", nil
	}

	var buf strings.Builder
	buf.WriteString("# Terraform Drift Fixes\n")
	fmt.Fprintf(&buf, "# Generated at: %s\n", w.now().Format(time.RFC3339))
	buf.WriteString("\n")
	buf.WriteString("# INSTRUCTIONS:\n")
	buf.WriteString("# 1. Review each resource below\n")
	buf.WriteString("# 2. Update your actual .tf files with the changes\n")
	buf.WriteString("# 3. Run 'terraform plan' to verify\n")
	buf.WriteString("# 4. Run 'terraform apply' to fix drift\n")
	buf.WriteString("\n# " + strings.Repeat("=", 70) + "\n\n")

	for _, action := range actions {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		w.writeAction(&buf, action)
	}

	if summary != "" {
		buf.WriteString(commentOut(summary))
		buf.WriteString("\n")
	}

	if err := os.WriteFile(w.outputPath, []byte(buf.String()), 0o644); err != nil {
		return "", errors.Wrap(err, errors.CodeFixWriteError, "failed to write fix file")
	}
	w.logger.Infof(ctx, "fix code saved to %s", w.outputPath)
	return w.outputPath, nil
}

func (w *Writer) writeAction(buf *strings.Builder, action domain.FixAction) {
	fmt.Fprintf(buf, "# Resource: %s\n", action.ResourceRef)
	fmt.Fprintf(buf, "# Severity: %s\n", action.Severity)
	fmt.Fprintf(buf, "# Issue: %s\n\n", action.Explanation)

	switch action.Kind {
	case domain.FixImport:
		buf.WriteString("# This resource no longer exists on the platform\n")
		fmt.Fprintf(buf, "# Command: %s\n", action.Command)
		buf.WriteString("\n# Manual steps:\n")
		writeSteps(buf, action.ManualSteps)
	default:
		if action.GeneratedConfig != "" {
			buf.WriteString(action.GeneratedConfig)
			buf.WriteString("\n")
		}
		buf.WriteString("\n# Manual steps:\n")
		writeSteps(buf, action.ManualSteps)
	}

	buf.WriteString("\n# " + strings.Repeat("-", 70) + "\n\n")
}

func writeSteps(buf *strings.Builder, steps []string) {
	for _, step := range steps {
		fmt.Fprintf(buf, "# %s\n", step)
	}
}

// commentOut prefixes every non-comment line so the summary stays
// valid inside a .tf file.
func commentOut(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if line != "" && !strings.HasPrefix(line, "#") {
			lines[i] = "# " + line
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
