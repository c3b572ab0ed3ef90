// internal/cli/realize.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shedtool/shed"
)

var realizeCmd = &cobra.Command{
	Use:   "realize",
	Short: "Download the manifest's packages into the local store",
	Long: `Resolve the manifest and fetch every package that is not yet present
in the local store, without entering a shell.`,
	RunE: runRealize,
}

func runRealize(cmd *cobra.Command, args []string) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}
	ev, err := newEvaluator()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	res, err := ev.Resolve(ctx, m, shed.ModeDefault)
	if err != nil {
		return err
	}
	if err := ev.Realize(ctx, res); err != nil {
		return err
	}
	fmt.Printf("Realized %d packages in %s\n", len(res.Pins), ev.Store().Root())
	return nil
}
