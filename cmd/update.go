package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alienfx-go/alienfx/internal/updater"
	"github.com/alienfx-go/alienfx/internal/version"
)

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var check bool
	var prerelease bool
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the binary to the latest release",
		Long:  `Checks GitHub for a newer release and replaces the running binary in place.`,
		Run: func(_ *cobra.Command, _ []string) {
			initLogging(logJSON)

			svc, err := updater.NewService(&updater.Options{
				Repository: "alienfx-go/alienfx",
				Prerelease: prerelease,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			if !svc.IsEnabled() {
				fmt.Fprintln(os.Stderr, "Update disabled:", svc.DisabledReason())
				os.Exit(1)
			}

			ctx := context.Background()
			info, err := svc.CheckForUpdate(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}

			if !info.UpdateAvailable {
				fmt.Printf("Already up to date (%s)\n", version.String())
				return
			}
			fmt.Printf("Update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
			if check {
				return
			}

			if err := svc.ApplyUpdate(ctx); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			fmt.Println("Updated. Restart the daemon to pick up the new binary.")
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Only check; do not download or apply")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prereleases")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")
	return cmd
}
