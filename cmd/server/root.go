package main

import (
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/judi-api/internal/config"
)

var (
	v   = config.New()
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "judi-classifier",
	Short: "Gambling text classifier with a web page and JSON API",
	Long:  "Loads a DistilBERT gambling/non-gambling classifier exported to ONNX and serves predictions over HTTP. Running without a subcommand starts the server.",

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		configFile, _ := cmd.Flags().GetString("config")

		loaded, err := config.Load(v, envFile, configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
	RunE: runServe,
}

func init() {
	pflags := rootCmd.PersistentFlags()
	pflags.String("config", "", "Path to a config file (default ./config.yaml if present)")
	pflags.String("env-file", "", "Path to a .env file to load before reading the environment")
	pflags.String("model-dir", "", "Directory holding model.onnx and tokenizer.json")
	pflags.Int("workers", 0, "Number of inference sessions")
	pflags.String("host", "", "Host to listen on")
	pflags.Int("port", 0, "Port to listen on")
	pflags.String("log-level", "", "Log level (debug, info, warn, error)")

	v.BindPFlag("model.dir", pflags.Lookup("model-dir"))
	v.BindPFlag("inference.workers", pflags.Lookup("workers"))
	v.BindPFlag("server.host", pflags.Lookup("host"))
	v.BindPFlag("server.port", pflags.Lookup("port"))
	v.BindPFlag("log.level", pflags.Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, predictCmd, queryCmd)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}
