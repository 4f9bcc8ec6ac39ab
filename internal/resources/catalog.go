package resources

import (
	"fmt"
	"sort"
	"sync"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/errors"
)

// FragmentFunc renders a configuration-literal fragment for one drifted
// resource, reflecting the observed values. Output is advisory text.
type FragmentFunc func(resourceName string, drifted []domain.AttributeDrift) string

// TypeSpec is everything the engine knows about one resource kind.
// Adding a kind is a data addition here, not a code-path fork in the
// diff engine or the synthesizer.
type TypeSpec struct {
	// Type is the terraform resource type, e.g. aws_instance.
	Type string

	// BenignNullAttributes may be null on the observed side without
	// being reported; the provider omits them under normal conditions.
	BenignNullAttributes []string

	// CriticalAttributes change the resource's operational behavior or
	// security posture; drift on any of them scores HIGH.
	CriticalAttributes []string

	// ImportPlaceholder stands in for the identifier in synthesized
	// import commands; the real identifier is gone with the resource.
	ImportPlaceholder string

	Fragment FragmentFunc
}

type Catalog struct {
	mu       sync.RWMutex
	specs    map[string]TypeSpec
	critical map[string]map[string]struct{}
}

func NewCatalog() *Catalog {
	return &Catalog{
		specs:    make(map[string]TypeSpec),
		critical: make(map[string]map[string]struct{}),
	}
}

func (c *Catalog) Register(spec TypeSpec) error {
	if spec.Type == "" {
		return errors.New(errors.CodeInternal, "type spec resource type cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.specs[spec.Type]; exists {
		return errors.New(errors.CodeInternal, fmt.Sprintf("type spec for %q already registered", spec.Type))
	}
	criticalSet := make(map[string]struct{}, len(spec.CriticalAttributes))
	for _, attr := range spec.CriticalAttributes {
		criticalSet[attr] = struct{}{}
	}
	c.specs[spec.Type] = spec
	c.critical[spec.Type] = criticalSet
	return nil
}

func (c *Catalog) Lookup(resourceType string) (TypeSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	spec, ok := c.specs[resourceType]
	return spec, ok
}

func (c *Catalog) IsCritical(resourceType, attribute string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set, ok := c.critical[resourceType]
	if !ok {
		return false
	}
	_, ok = set[attribute]
	return ok
}

// BenignNullDefaults assembles the per-type benign-null table for
// building SuppressionRules.
func (c *Catalog) BenignNullDefaults() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]string, len(c.specs))
	for resourceType, spec := range c.specs {
		attrs := make([]string, len(spec.BenignNullAttributes))
		copy(attrs, spec.BenignNullAttributes)
		out[resourceType] = attrs
	}
	return out
}

func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	types := make([]string, 0, len(c.specs))
	for resourceType := range c.specs {
		types = append(types, resourceType)
	}
	sort.Strings(types)
	return types
}

// DefaultCatalog registers the closed set of built-in resource kinds.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, spec := range []TypeSpec{
		instanceSpec(),
		securityGroupSpec(),
		bucketSpec(),
	} {
		if err := c.Register(spec); err != nil {
			panic(err)
		}
	}
	return c
}

// DefaultIgnoreAttributes is the global ignore-list applied when the
// configuration does not supply its own: identity and computed fields
// that always differ between declared and observed views.
func DefaultIgnoreAttributes() []string {
	return []string{"id", "arn", "create_time", "owner_id", "state"}
}
