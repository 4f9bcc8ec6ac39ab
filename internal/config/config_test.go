package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/driftsentry/driftsentry/internal/config"
	"github.com/driftsentry/driftsentry/internal/resources"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, "tfstate", cfg.State.Source)
	assert.Equal(t, "terraform.tfstate", cfg.State.Path)
	assert.Equal(t, 10, cfg.Settings.Concurrency)
	assert.Equal(t, "text", cfg.Settings.ReporterType)
	assert.Equal(t, "terraform_fixes.tf", cfg.Fixes.OutputFile)
}

func TestBuildSuppressionRules(t *testing.T) {
	catalog := resources.DefaultCatalog()

	t.Run("Defaults Apply", func(t *testing.T) {
		rules := config.DefaultConfig().BuildSuppressionRules(catalog)
		assert.True(t, rules.IsIgnored("id"))
		assert.True(t, rules.IsIgnored("arn"))
		assert.False(t, rules.IsIgnored("instance_type"))
		assert.True(t, rules.IsBenignNull(resources.TypeInstance, "key_name"))
		assert.False(t, rules.IsBenignNull(resources.TypeInstance, "subnet_id"))
	})

	t.Run("Overrides Merge On Top Of Defaults", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Detection.IgnoreAttributes = []string{"private_ip"}
		cfg.Detection.BenignNull = map[string][]string{
			resources.TypeInstance: {"subnet_id"},
			"aws_custom_thing":     {"whatever"},
		}

		rules := cfg.BuildSuppressionRules(catalog)
		assert.True(t, rules.IsIgnored("id"))
		assert.True(t, rules.IsIgnored("private_ip"))
		assert.True(t, rules.IsBenignNull(resources.TypeInstance, "key_name"))
		assert.True(t, rules.IsBenignNull(resources.TypeInstance, "subnet_id"))
		assert.True(t, rules.IsBenignNull("aws_custom_thing", "whatever"))
	})
}
