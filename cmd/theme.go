package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alienfx-go/alienfx/internal/theme"
)

// CreateThemeCmd creates the theme command with list and apply subcommands.
func CreateThemeCmd() *cobra.Command {
	var themesDir string
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Manage lighting themes",
		Long: `Lists and applies stored lighting themes. Themes are JSON files in ` +
			`$XDG_CONFIG_HOME/alienfx by default.`,
	}
	cmd.PersistentFlags().StringVar(&themesDir, "themes-dir", "", "Theme directory (default: $XDG_CONFIG_HOME/alienfx)")
	cmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")

	openStore := func() *theme.Store {
		dir := themesDir
		if dir == "" {
			dir = theme.DefaultDir()
		}
		store, err := theme.NewStore(dir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return store
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored themes",
		Run: func(_ *cobra.Command, _ []string) {
			initLogging(logJSON)
			store := openStore()

			names, err := store.List()
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			last, _ := store.LastApplied()
			for _, n := range names {
				marker := " "
				if n == last {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, n)
			}
		},
	}

	applyCmd := &cobra.Command{
		Use:   "apply [name]",
		Short: "Apply a stored theme",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			initLogging(logJSON)
			store := openStore()

			th, err := store.Load(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}

			c, err := openController()
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			defer c.Close()

			if err := c.ApplyTheme(th); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			if err := store.SetLastApplied(th.Name); err != nil {
				fmt.Fprintln(os.Stderr, "Warning: could not record last theme:", err)
			}
			fmt.Printf("Applied theme %q to %s\n", th.Name, c.Model().Name)
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(applyCmd)
	return cmd
}
