package cmd

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/s0up4200/omophub/omophub"
)

const repository = "s0up4200/omophub"

var (
	cliVersion = "dev"
	buildTime  = "unknown"

	checkOnly bool
)

// SetVersion stamps the build version and time from main
func SetVersion(version, built string) {
	cliVersion = version
	buildTime = built
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "omophub %s (built %s, %s/%s)\n", cliVersion, buildTime, runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "client library %s\n", omophub.Version)
		if _, err := currentVersion(); err != nil {
			fmt.Fprintln(out, dimColor.Sprint("development build; update is unavailable"))
		}
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update omophub to the latest release",
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(versionCmd, updateCmd)

	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")
}

// currentVersion parses the stamped build version
func currentVersion() (semver.Version, error) {
	v, err := semver.ParseTolerant(cliVersion)
	if err != nil {
		return semver.Version{}, fmt.Errorf("cannot parse version '%s': %w", cliVersion, err)
	}
	return v, nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	current, err := currentVersion()
	if err != nil {
		return fmt.Errorf("update is not available for this build: %w", err)
	}

	ctx := cmd.Context()
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repository))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return errors.New("no release found for this platform")
	}

	logger.Debug().
		Str("current", current.String()).
		Str("latest", latest.Version()).
		Msg("Checked latest release")

	if latest.LessOrEqual(current.String()) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s omophub %s is up to date\n", color.GreenString("✓"), current)
		return nil
	}

	if checkOnly {
		fmt.Fprintf(cmd.OutOrStdout(), "Update available: %s → %s\n", current, color.GreenString(latest.Version()))
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Updated omophub to %s\n", color.GreenString("✓"), latest.Version())
	return nil
}
