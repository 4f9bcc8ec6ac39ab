package domain

// SuppressionRules carries the false-positive suppression policy for one
// analysis run: a global ignore-list of attribute names that are never
// compared (identity/computed fields), and a per-resource-type set of
// attributes allowed to be null on the observed side because the provider
// omits them under normal conditions. Rules are explicit call parameters
// rather than module state so the engine stays reentrant and testable
// under varied policies.
type SuppressionRules struct {
	globalIgnore map[string]struct{}
	benignNull   map[string]map[string]struct{}
}

func NewSuppressionRules(globalIgnore []string, benignNull map[string][]string) SuppressionRules {
	rules := SuppressionRules{
		globalIgnore: make(map[string]struct{}, len(globalIgnore)),
		benignNull:   make(map[string]map[string]struct{}, len(benignNull)),
	}
	for _, attr := range globalIgnore {
		rules.globalIgnore[attr] = struct{}{}
	}
	for resourceType, attrs := range benignNull {
		set := make(map[string]struct{}, len(attrs))
		for _, attr := range attrs {
			set[attr] = struct{}{}
		}
		rules.benignNull[resourceType] = set
	}
	return rules
}

func (r SuppressionRules) IsIgnored(attribute string) bool {
	_, ok := r.globalIgnore[attribute]
	return ok
}

func (r SuppressionRules) IsBenignNull(resourceType, attribute string) bool {
	set, ok := r.benignNull[resourceType]
	if !ok {
		return false
	}
	_, ok = set[attribute]
	return ok
}
