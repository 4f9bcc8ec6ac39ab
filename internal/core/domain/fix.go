package domain

import "time"

type FixKind string

const (
	FixImport FixKind = "import"
	FixUpdate FixKind = "update"
)

// FixAction is synthesized remediation guidance for one finding. The
// text is advisory, never an executable script. GeneratedConfig and
// Command are empty when not applicable.
type FixAction struct {
	ResourceRef     string
	Kind            FixKind
	Severity        Severity
	Explanation     string
	GeneratedConfig string
	Command         string
	ManualSteps     []string
}

// RunMetadata travels with the findings to the report renderer.
type RunMetadata struct {
	Source           string
	StatePath        string
	Region           string
	TerraformVersion string
	StartedAt        time.Time
}
