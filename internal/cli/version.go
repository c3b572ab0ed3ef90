// internal/cli/version.go
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/shedtool/shed/pkg/platform"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shed version %s\n", rootCmd.Version)
		fmt.Printf("  go:       %s\n", runtime.Version())
		if p, err := platform.Detect(); err == nil {
			fmt.Printf("  platform: %s\n", p)
		}
	},
}
