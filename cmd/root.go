package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/omophub/config"
	"github.com/s0up4200/omophub/omophub"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = zerolog.Nop()

	// Global flags
	outputFormat string
	jsonPath     string
	vocabVersion string
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "omophub",
	Short: "Query the OMOPHub standardized vocabulary API",
	Long: `omophub is a CLI for the OMOPHub vocabulary service. It looks up OMOP
concepts, searches vocabularies, walks concept hierarchies and follows
mappings between vocabularies such as SNOMED, ICD10CM, LOINC and RxNorm.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&jsonPath, "path", "", "print only the value at this JSON path (gjson syntax)")
	rootCmd.PersistentFlags().StringVar(&vocabVersion, "vocab-version", "", "pin requests to a vocabulary release")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every request attempt")
}

// initializeApp loads the configuration and sets up logging
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Command line flags win over the config file
	if cmd.Flags().Changed("output") {
		cfg.Output.Format = strings.ToLower(outputFormat)
	}
	if cmd.Flags().Changed("vocab-version") {
		cfg.API.VocabVersion = vocabVersion
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	switch cfg.Output.Format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format: %s (must be table, json or yaml)", cfg.Output.Format)
	}

	logger = setupLogger(cfg.Logging)
	color.NoColor = !cfg.Output.Color || !isTerminal(os.Stdout)

	return nil
}

// newClient creates an API client from the loaded configuration
func newClient() (*omophub.Client, error) {
	opts := append(cfg.ClientOptions(),
		omophub.WithLogger(logger),
		omophub.WithUserAgent(fmt.Sprintf("omophub-cli/%s", cliVersion)),
	)
	client, err := omophub.NewClient(cfg.API.Key, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OMOPHub client: %w", err)
	}
	return client, nil
}

// setupLogger builds the CLI logger. Console output is colored only when
// stderr is a terminal.
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
