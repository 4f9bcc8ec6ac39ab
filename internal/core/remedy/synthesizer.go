// Package remedy turns drift findings into advisory fix actions:
// import instructions for vanished resources and configuration fragments
// aligning the declared state to observed reality. Synthesis never fails
// on a valid finding; anything the synthesizer does not specifically
// understand degrades to a manual-review stub instead of aborting the
// batch.
package remedy

import (
	"fmt"
	"strings"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/resources"
)

// NoFixesNeeded is the fixed sentinel returned by Summarize for an
// empty batch.
const NoFixesNeeded = "No drift detected - no fixes needed."

type Synthesizer struct {
	catalog *resources.Catalog
}

func NewSynthesizer(catalog *resources.Catalog) *Synthesizer {
	return &Synthesizer{catalog: catalog}
}

// Synthesize maps one finding to a fix action, or nil when the finding
// carries no drift.
func (s *Synthesizer) Synthesize(finding domain.DriftFinding) *domain.FixAction {
	if !finding.HasDrift {
		return nil
	}
	if finding.Kind == domain.FindingResourceDeleted {
		return s.importAction(finding)
	}
	return s.updateAction(finding)
}

func (s *Synthesizer) importAction(finding domain.DriftFinding) *domain.FixAction {
	placeholder := "<resource-id>"
	if spec, ok := s.catalog.Lookup(finding.ResourceType); ok && spec.ImportPlaceholder != "" {
		placeholder = spec.ImportPlaceholder
	}

	ref := finding.Address()
	return &domain.FixAction{
		ResourceRef: ref,
		Kind:        domain.FixImport,
		Severity:    finding.Severity,
		Explanation: "resource was deleted from the platform but is still declared in state",
		Command:     fmt.Sprintf("terraform import %s %s", ref, placeholder),
		ManualSteps: []string{
			"1. Verify the resource no longer exists on the platform",
			"2. Remove it from state: terraform state rm " + ref,
			"3. Or recreate it: terraform apply",
		},
	}
}

func (s *Synthesizer) updateAction(finding domain.DriftFinding) *domain.FixAction {
	var config string
	if spec, ok := s.catalog.Lookup(finding.ResourceType); ok && spec.Fragment != nil {
		config = spec.Fragment(finding.ResourceName, finding.DriftedAttributes)
	} else {
		config = unknownTypeStub(finding)
	}

	return &domain.FixAction{
		ResourceRef:     finding.Address(),
		Kind:            domain.FixUpdate,
		Severity:        finding.Severity,
		Explanation:     fmt.Sprintf("%d attribute(s) drifted", len(finding.DriftedAttributes)),
		GeneratedConfig: config,
		Command:         "terraform apply",
		ManualSteps: []string{
			"1. Review the drifted attributes below",
			"2. Update the declared configuration with the suggested changes",
			"3. Run: terraform plan (to verify changes)",
			"4. Run: terraform apply (to fix drift)",
		},
	}
}

// unknownTypeStub names the type and the drifted attributes without
// fabricating schema the synthesizer does not know: comments only.
func unknownTypeStub(finding domain.DriftFinding) string {
	names := make([]string, 0, len(finding.DriftedAttributes))
	for _, d := range finding.DriftedAttributes {
		names = append(names, d.Attribute)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Manual update required for %s\n", finding.Address())
	fmt.Fprintf(&b, "# Drifted attributes: %s\n", strings.Join(names, ", "))
	return b.String()
}

// Summarize groups a batch of fix actions by severity, descending, with
// a count header and one line per action.
func (s *Synthesizer) Summarize(actions []domain.FixAction) string {
	if len(actions) == 0 {
		return NoFixesNeeded
	}

	var b strings.Builder
	b.WriteString("# Drift Fix Summary\n")
	fmt.Fprintf(&b, "# Total fixes needed: %d\n\n", len(actions))

	for _, severity := range []domain.Severity{
		domain.SeverityCritical,
		domain.SeverityHigh,
		domain.SeverityMedium,
		domain.SeverityLow,
	} {
		group := make([]domain.FixAction, 0)
		for _, action := range actions {
			if action.Severity == severity {
				group = append(group, action)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s (%d)\n", severity, len(group))
		for _, action := range group {
			fmt.Fprintf(&b, "- %s: %s\n", action.ResourceRef, action.Explanation)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
