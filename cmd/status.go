package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alienfx-go/alienfx/internal/transport"
)

// CreateStatusCmd creates the status command.
func CreateStatusCmd() *cobra.Command {
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show detected device and controller status",
		Run: func(_ *cobra.Command, _ []string) {
			initLogging(logJSON)

			c, err := openController()
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			defer c.Close()

			model := c.Model()
			fmt.Printf("Device:    %s\n", model.Name)
			fmt.Printf("Transport: %s\n", c.TransportKind())
			fmt.Printf("Revision:  %d\n", model.Revision)
			fmt.Printf("Zones:     %d\n", len(model.Zones))

			st, err := c.Status()
			switch {
			case errors.Is(err, transport.ErrUnsupported):
				fmt.Println("Status:    read-back not supported")
			case err != nil:
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			case st.Ready:
				fmt.Printf("Status:    ready (0x%02x)\n", st.Raw)
			default:
				fmt.Printf("Status:    busy (0x%02x)\n", st.Raw)
			}
		},
	}

	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")
	return cmd
}
