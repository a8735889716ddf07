package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"modelmind/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	configMgr *config.Manager
	logger    *slog.Logger
	rootCmd   = &cobra.Command{
		Use:   "modelmind",
		Short: "Compare LLM providers side by side",
		Long: `ModelMind sends one prompt to several LLM providers at once, streams their
answers as they arrive and reports time to first fragment, total time, output
length and throughput for each of them, together with the winner of every
category. It also ships a few single-shot helpers: a prompt coach, an ethics
and bias checker and interview practice.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./modelmind.yaml or $HOME/.config/modelmind/modelmind.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig sets up logging and reads in config file and ENV variables.
func initConfig() {
	logger = newLogger(viper.GetBool("verbose"))
	slog.SetDefault(logger)

	configMgr = config.NewManager()

	// config init must work without a valid configuration
	if len(os.Args) >= 3 && os.Args[1] == "config" && os.Args[2] == "init" {
		return
	}

	if err := configMgr.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
