// internal/cli/lock.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shedtool/shed"
)

var lockFrozen bool

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Pin the manifest's packages in shell.lock",
	Long: `Resolve every package against the channel catalog and write the pins
to shell.lock next to the manifest. With --frozen, verify that the existing
lockfile covers the manifest instead of writing anything.`,
	RunE: runLock,
}

func init() {
	lockCmd.Flags().BoolVar(&lockFrozen, "frozen", false, "verify the lockfile instead of updating it")
}

func runLock(cmd *cobra.Command, args []string) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}
	ev, err := newEvaluator()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if lockFrozen {
		res, err := ev.Resolve(ctx, m, shed.ModeFrozen)
		if err != nil {
			return err
		}
		fmt.Printf("Lockfile covers all %d packages for %s\n", len(res.Pins), res.Platform)
		return nil
	}

	res, err := ev.Resolve(ctx, m, shed.ModeUpdate)
	if err != nil {
		return err
	}
	if err := ev.WriteLock(res); err != nil {
		return err
	}
	for _, name := range res.Names() {
		fmt.Printf("  %s -> %s\n", name, res.Pins[name].NameVersion)
	}
	fmt.Printf("Pinned %d packages for %s (channel %s)\n", len(res.Pins), res.Platform, res.Channel)
	return nil
}
