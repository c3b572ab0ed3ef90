// internal/cli/export.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shedtool/shed"
	"github.com/shedtool/shed/pkg/envdef"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the shell environment as POSIX export statements",
	Long: `Resolve the manifest, realize any missing packages, and print the
derived environment as export statements for eval:

  eval "$(shed export)"`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
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
	def, err := ev.Environment(res)
	if err != nil {
		return err
	}

	fmt.Print(def.ExportScript(envdef.EnvironToMap(os.Environ())))
	return nil
}
