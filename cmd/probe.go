package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/magne4000/displayd/internal/logging"
	"github.com/magne4000/displayd/pkg/drm/evdi"
)

// CreateProbeCmd creates the probe command.
func CreateProbeCmd() *cobra.Command {
	var maxIndex int
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe DRM card nodes for evdi devices",
		Long: `Scans /dev/dri/card* nodes and classifies each one: available (evdi-backed), ` +
			`unrecognized (owned by another driver), or not present. Useful for diagnosing ` +
			`why virtual display creation fails.`,
		Run: func(_ *cobra.Command, _ []string) {
			loggingConfig := logging.Config{
				Level:  "info",
				Format: "text",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("probe")

			if !evdi.ModuleLoaded() {
				logger.Warn("evdi kernel module is not loaded",
					"hint", "install evdi-dkms and run: modprobe evdi")
			}

			available := 0
			for index := 0; index < maxIndex; index++ {
				status := evdi.CheckDevice(index)
				if status == evdi.StatusNotPresent {
					continue
				}
				fmt.Printf("card%d: %s\n", index, status)
				if status == evdi.StatusAvailable {
					available++
				}
			}

			if available == 0 {
				fmt.Println("no available evdi devices found")
				os.Exit(1)
			}
		},
	}

	cmd.Flags().IntVar(&maxIndex, "max-index", 16, "Highest card index to probe (exclusive)")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Use JSON log format")

	return cmd
}
