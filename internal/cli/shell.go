// internal/cli/shell.go
package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/shedtool/shed"
	"github.com/shedtool/shed/internal/log"
	"github.com/shedtool/shed/pkg/envdef"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Enter the development shell",
	Long: `Resolve the manifest, realize any missing packages, and start an
interactive subshell with the derived environment applied.`,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	if os.Getenv("SHED_SHELL") != "" {
		return fmt.Errorf("already inside a shed shell, exit it first")
	}

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

	env := def.Apply(envdef.EnvironToMap(os.Environ()))
	env["SHED_SHELL"] = "1"

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	environ := make([]string, 0, len(env))
	for k, v := range env {
		environ = append(environ, k+"="+v)
	}

	if m.Hook != "" {
		hook := exec.CommandContext(ctx, shell, "-c", m.Hook)
		hook.Dir = m.Dir
		hook.Env = environ
		hook.Stdout = os.Stdout
		hook.Stderr = os.Stderr
		if err := hook.Run(); err != nil {
			return fmt.Errorf("running shell hook: %w", err)
		}
	}

	logger := log.WithComponent("shell")
	logger.Debug().Str("shell", shell).Msg("starting subshell")
	fmt.Fprintf(os.Stderr, "Entering shed shell. Type 'exit' to leave.\n")

	sub := exec.CommandContext(ctx, shell)
	sub.Env = environ
	sub.Stdin = os.Stdin
	sub.Stdout = os.Stdout
	sub.Stderr = os.Stderr
	return sub.Run()
}
