package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/magne4000/displayd/internal/edid"
)

// CreateEDIDCmd creates the edid command.
func CreateEDIDCmd() *cobra.Command {
	var width int
	var height int
	var refreshRate int
	var hdr bool
	var output string

	cmd := &cobra.Command{
		Use:   "edid",
		Short: "Synthesize an EDID block for a display mode",
		Long: `Generates the 128-byte EDID block that would be handed to the kernel for the ` +
			`given mode. Writes a hex dump to stdout, or the raw bytes to a file with --output ` +
			`(loadable via drm.edid_firmware for debugging).`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if width <= 0 || height <= 0 || refreshRate <= 0 {
				return fmt.Errorf("width, height and refresh rate must be positive")
			}

			block := edid.Synthesize(width, height, refreshRate, hdr)

			if output != "" {
				if err := os.WriteFile(output, block, 0o644); err != nil {
					return fmt.Errorf("failed to write EDID file: %w", err)
				}
				fmt.Printf("wrote %d bytes to %s\n", len(block), output)
				return nil
			}

			for i := 0; i < len(block); i += 16 {
				fmt.Printf("%04x:", i)
				for j := i; j < i+16; j++ {
					fmt.Printf(" %02x", block[j])
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 1920, "Display width in pixels")
	cmd.Flags().IntVar(&height, "height", 1080, "Display height in pixels")
	cmd.Flags().IntVar(&refreshRate, "refresh-rate", 60, "Refresh rate in Hz")
	cmd.Flags().BoolVar(&hdr, "hdr", false, "Request HDR (accepted but not signaled)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write raw EDID bytes to this file instead of a hex dump")

	return cmd
}
