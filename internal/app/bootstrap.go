// Package app wires configuration, adapters, and the core engine into
// a runnable application.
package app

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/driftsentry/driftsentry/internal/adapters/platform/aws"
	"github.com/driftsentry/driftsentry/internal/adapters/state/tfshow"
	"github.com/driftsentry/driftsentry/internal/adapters/state/tfstate"
	"github.com/driftsentry/driftsentry/internal/config"
	"github.com/driftsentry/driftsentry/internal/core/diff"
	"github.com/driftsentry/driftsentry/internal/core/ports"
	"github.com/driftsentry/driftsentry/internal/core/remedy"
	"github.com/driftsentry/driftsentry/internal/core/service"
	"github.com/driftsentry/driftsentry/internal/errors"
	"github.com/driftsentry/driftsentry/internal/fixfile"
	"github.com/driftsentry/driftsentry/internal/log"
	jsonreport "github.com/driftsentry/driftsentry/internal/reporting/json"
	"github.com/driftsentry/driftsentry/internal/reporting/text"
	"github.com/driftsentry/driftsentry/internal/resources"
)

type Application struct {
	Engine ports.AnalysisEngine
	Logger ports.Logger
	Config *config.Config
}

func BuildFromViper(ctx context.Context, v *viper.Viper) (*Application, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	logger, err := log.NewLogger(log.Config{
		Level:  cfg.Settings.LogLevel,
		Format: cfg.Settings.LogFormat,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
	}
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "using configuration file %s", v.ConfigFileUsed())
	}

	if err := validateConfig(ctx, cfg); err != nil {
		logger.Errorf(ctx, err, "configuration validation failed")
		return nil, err
	}

	catalog := resources.DefaultCatalog()
	rules := cfg.BuildSuppressionRules(catalog)

	source, err := buildSnapshotSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Infof(ctx, "using %s snapshot source: %s", source.Type(), cfg.State.Path)

	resolver, err := aws.NewResolver(ctx, aws.Options{
		Region:  cfg.Platform.AWS.Region,
		Profile: cfg.Platform.AWS.Profile,
		MaxRPS:  cfg.Platform.AWS.MaxRPS,
	}, logger.WithFields(map[string]any{"component": "resolver"}))
	if err != nil {
		return nil, err
	}

	reporter, err := buildReporter(cfg, logger)
	if err != nil {
		return nil, err
	}

	engine, err := service.NewAnalysisEngine(
		source,
		resolver,
		diff.NewEngine(catalog),
		remedy.NewSynthesizer(catalog),
		reporter,
		fixfile.NewWriter(cfg.Fixes.OutputFile, logger.WithFields(map[string]any{"component": "fixfile"})),
		rules,
		logger.WithFields(map[string]any{"component": "engine"}),
		cfg.State.Path,
		cfg.Platform.AWS.Region,
		cfg.Settings.Concurrency,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize analysis engine")
	}

	logger.Debugf(ctx, "application bootstrap complete")
	return &Application{Engine: engine, Logger: logger, Config: cfg}, nil
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.DefaultConfig()
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigParseError, "failed to unmarshal configuration")
	}
	return cfg, nil
}

func validateConfig(ctx context.Context, cfg *config.Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.StructCtx(ctx, cfg)
	if err == nil {
		return nil
	}

	var details strings.Builder
	details.WriteString("configuration validation failed:")
	var validationErrors validator.ValidationErrors
	if stderrs.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			fmt.Fprintf(&details, "\n - field %q failed %q validation (value: %v)",
				fe.Namespace(), fe.Tag(), fe.Value())
		}
	} else {
		fmt.Fprintf(&details, " %v", err)
	}
	return errors.NewUserFacing(errors.CodeConfigValidation, details.String(),
		"Check your configuration file, environment variables, and flags.")
}

func buildSnapshotSource(cfg *config.Config, logger ports.Logger) (ports.SnapshotSource, error) {
	switch cfg.State.Source {
	case "tfstate", "":
		return tfstate.NewProvider(cfg.State.Path, logger)
	case "tfshow":
		return tfshow.NewProvider(cfg.State.Path, logger)
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("invalid state source %q", cfg.State.Source),
			"Supported sources: tfstate, tfshow.")
	}
}

func buildReporter(cfg *config.Config, logger ports.Logger) (ports.Reporter, error) {
	switch cfg.Settings.ReporterType {
	case text.ReporterTypeText, "":
		return text.NewReporter(text.Config{NoColor: cfg.Settings.NoColor},
			logger.WithFields(map[string]any{"component": "reporter"}))
	case jsonreport.ReporterTypeJSON:
		return jsonreport.NewReporter(logger.WithFields(map[string]any{"component": "reporter"}))
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("unsupported reporter type %q", cfg.Settings.ReporterType),
			"Supported reporters: text, json.")
	}
}
