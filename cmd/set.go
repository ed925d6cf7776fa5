package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alienfx-go/alienfx/internal/fxpacket"
	"github.com/alienfx-go/alienfx/internal/theme"
)

// CreateSetCmd creates the set command.
func CreateSetCmd() *cobra.Command {
	var zone string
	var color string
	var color2 string
	var effect string
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a lighting zone",
		Long: `Sets the color and effect of a single lighting zone on the detected ` +
			`AlienFX controller. Colors are hex RGB, e.g. "#ff0000".`,
		Run: func(_ *cobra.Command, _ []string) {
			initLogging(logJSON)

			c, err := openController()
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			defer c.Close()

			rgb, err := theme.ParseColor(color)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}

			st := fxpacket.ZoneState{Color: rgb, Effect: fxpacket.EffectStatic, Enabled: true}
			if effect != "" {
				st.Effect, err = fxpacket.ParseEffect(effect)
				if err != nil {
					fmt.Fprintln(os.Stderr, "Error:", err)
					os.Exit(1)
				}
				st.Enabled = st.Effect != fxpacket.EffectOff
			}
			if color2 != "" {
				st.Color2, err = theme.ParseColor(color2)
				if err != nil {
					fmt.Fprintln(os.Stderr, "Error:", err)
					os.Exit(1)
				}
			}

			if err := c.ApplyAll(map[string]fxpacket.ZoneState{zone: st}); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			fmt.Printf("%s: %s %s\n", zone, st.Effect, color)
		},
	}

	cmd.Flags().StringVar(&zone, "zone", "", "Zone name, e.g. AlienHead")
	cmd.Flags().StringVar(&color, "color", "", "Color as #rrggbb")
	cmd.Flags().StringVar(&color2, "color2", "", "Morph target color as #rrggbb")
	cmd.Flags().StringVar(&effect, "effect", "", "Effect mode: static, pulse, morph, off")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")
	_ = cmd.MarkFlagRequired("zone")
	_ = cmd.MarkFlagRequired("color")

	return cmd
}

// CreateZonesCmd creates the zones command.
func CreateZonesCmd() *cobra.Command {
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List lighting zones",
		Long:  `Lists the zones of the detected AlienFX controller in declaration order.`,
		Run: func(_ *cobra.Command, _ []string) {
			initLogging(logJSON)

			c, err := openController()
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			defer c.Close()

			fmt.Printf("%s (%s)\n", c.Model().Name, c.TransportKind())
			for _, z := range c.Model().Zones {
				fmt.Printf("  %-20s 0x%04x\n", z.Name, z.Code)
			}
		},
	}

	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")
	return cmd
}
