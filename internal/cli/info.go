// internal/cli/info.go
package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shedtool/shed/internal/lockfile"
	"github.com/shedtool/shed/pkg/catalog"
)

var infoCmd = &cobra.Command{
	Use:   "info <package>",
	Short: "Show catalog and lock details for a package",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	name := args[0]

	m, err := loadManifest()
	if err != nil {
		return err
	}
	ev, err := newEvaluator()
	if err != nil {
		return err
	}

	channel := m.Channel
	if channel == "" {
		channel = cfg.Channel
	}

	cat, err := catalog.Load(catalog.Path(cfg.CacheDir, channel))
	if err != nil {
		return fmt.Errorf("loading catalog for channel %q: %w (run 'shed lock' to fetch it)", channel, err)
	}
	entry, err := cat.Lookup(name)
	if err != nil {
		return err
	}

	fmt.Printf("Package: %s\n", name)
	fmt.Printf("Channel: %s\n", channel)

	platforms := make([]string, 0, len(entry.Platforms))
	for p := range entry.Platforms {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	fmt.Println("Platforms:")
	for _, p := range platforms {
		a := entry.Platforms[p]
		fmt.Printf("  %-16s %s (%s)\n", p, a.NameVersion, a.StoreHash)
	}

	lock, err := lockfile.Load(lockfile.PathIn(m.Dir))
	switch {
	case errors.Is(err, lockfile.ErrNotFound):
		// no lockfile yet
	case err != nil:
		return err
	default:
		if pin, ok := lock.Pin(name); ok {
			fmt.Printf("Locked: %s (%s)\n", pin.NameVersion, pin.StoreHash)
			if ev.Store().Has(pin.StoreHash, pin.NameVersion) {
				fmt.Printf("Realized: %s\n", ev.Store().Entry(pin.StoreHash, pin.NameVersion).Path)
			} else {
				fmt.Println("Realized: no")
			}
		}
	}
	return nil
}
