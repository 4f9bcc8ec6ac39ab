package main

import (
	"context"
	stderrs "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/driftsentry/driftsentry/internal/app"
	apperrors "github.com/driftsentry/driftsentry/internal/errors"
)

const (
	exitClean = 0
	exitFatal = 1
	exitDrift = 2
)

var (
	cfgFile    string
	logLevel   string
	logFormat  string
	noColor    bool
	statePath  string
	outputFile string
)

var rootCmd = &cobra.Command{
	Use:   "driftsentry",
	Short: "Detects drift between declared infrastructure state and live AWS resources.",
	Long: `DriftSentry compares resources declared in a Terraform state file
against their observed configuration on AWS, classifies each difference
by severity, and synthesizes remediation guidance for every finding.

Exit codes: 0 when no drift was found, 2 when drift was found, 1 on error.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func run(ctx context.Context) error {
	application, err := app.BuildFromViper(ctx, viper.GetViper())
	if err != nil {
		printUserFacing(err)
		return err
	}

	result, err := application.Engine.Run(ctx)
	if err != nil {
		printUserFacing(err)
		return err
	}
	if result.Summary != "" {
		fmt.Println(result.Summary)
	}
	if result.FixPath != "" {
		fmt.Printf("Fix code saved to: %s\n", result.FixPath)
	}
	if result.HasDrift() {
		return errDriftFound
	}
	return nil
}

// errDriftFound signals the drift exit code without printing anything:
// the report has already been rendered by the time it is returned.
var errDriftFound = stderrs.New("drift found")

func printUserFacing(err error) {
	msg, suggestion, ok := apperrors.GetUserFacingMessage(err)
	if !ok {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", msg)
	if suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
	}
}

func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if stderrs.Is(err, errDriftFound) {
			return exitDrift
		}
		return exitFatal
	}
	return exitClean
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is ./driftsentry.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Override log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored report output")
	rootCmd.PersistentFlags().StringVarP(&statePath, "state", "s", "", "Path to the Terraform state file or show output")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Path for the generated fix file")

	cobra.CheckErr(viper.BindPFlag("settings.log_level", rootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("settings.log_format", rootCmd.PersistentFlags().Lookup("log-format")))
	cobra.CheckErr(viper.BindPFlag("settings.no_color", rootCmd.PersistentFlags().Lookup("no-color")))
	cobra.CheckErr(viper.BindPFlag("state.path", rootCmd.PersistentFlags().Lookup("state")))
	cobra.CheckErr(viper.BindPFlag("fixes.output_file", rootCmd.PersistentFlags().Lookup("output")))

	viper.SetEnvPrefix("DRIFTSENTRY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("driftsentry")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrs.As(err, &notFound) {
			return apperrors.Wrap(err, apperrors.CodeConfigReadError, "failed to read config file")
		}
	}
	return nil
}
