package commands

import (
	"fmt"
	"runtime"

	goversion "github.com/hashicorp/go-version"
	"github.com/satishbabariya/nestql/internal/cli/ui"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var checkUpdate bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("nestql version %s\n", Version)
			fmt.Printf("  Git Commit: %s\n", GitCommit)
			fmt.Printf("  Build Time: %s\n", BuildTime)
			fmt.Printf("  Go Version: %s\n", runtime.Version())
			fmt.Printf("  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

			if checkUpdate {
				return checkForUpdates(Version)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkUpdate, "check-update", false, "check whether a newer release exists")
	return cmd
}

// latestKnownVersion is the most recent tagged release. A release pipeline
// step rewrites it alongside Version.
const latestKnownVersion = "0.1.0"

func checkForUpdates(currentVersion string) error {
	current, err := goversion.NewVersion(currentVersion)
	if err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}
	latest, err := goversion.NewVersion(latestKnownVersion)
	if err != nil {
		return fmt.Errorf("invalid latest version format: %w", err)
	}

	if current.LessThan(latest) {
		ui.PrintWarning("A new version is available: %s", latest)
		fmt.Println("Update with: go install github.com/satishbabariya/nestql/cmd/nestql@latest")
		return nil
	}
	ui.PrintSuccess("You are on the latest version")
	return nil
}
