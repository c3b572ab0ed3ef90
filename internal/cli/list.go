// internal/cli/list.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List realized packages in the local store",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	ev, err := newEvaluator()
	if err != nil {
		return err
	}
	entries, err := ev.Store().List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Store is empty.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-40s %s\n", e.NameVersion, e.Hash)
	}
	fmt.Printf("\n%d packages in %s\n", len(entries), ev.Store().Root())
	return nil
}
