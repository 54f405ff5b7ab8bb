package cli

import (
	"context"

	"github.com/spf13/cobra"

	"hrintake/internal/common"
	"hrintake/internal/config"
	"hrintake/internal/errors"
)

type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "hrintake",
	Short: "Staff recruitment intake and review tool",
	Long: `hrintake fills and submits staff recruitment applications from draft files,
and gives HR administrators a dashboard to list, filter, download and email
submitted applications. It can also serve the whole workflow over HTTP.`,
	SilenceUsage: true,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

// outputFlags are the --format and --output flags shared by every printing command
type outputFlags struct {
	format string
	file   string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.file, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&o.format, "format", "", "Output format: json, text, markdown or table")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return common.NewOutputHandler(nil).GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

func (o *outputFlags) resolve(cmd *cobra.Command) (common.CommandConfig, error) {
	return common.ResolveCommandConfig(o.format, o.file, getConfigFromContext(cmd.Context()).App)
}

func init() {
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
