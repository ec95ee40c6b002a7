// Package main provides the contractcompat binary entry point.
// contractcompat checks whether a new version of an account's contracts
// can replace the deployed version without breaking stored data.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "contractcompat"
)

// Exit codes
const (
	exitOK       = 0
	exitError    = 1
	exitPanic    = 2
	exitRejected = 3
)

// exitCodeError carries a non-zero exit code without an error message.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(exitPanic)
		}
	}()

	os.Exit(execute(rootCmd(newApp(os.Stdout, os.Stderr)), os.Stderr))
}

// execute runs cmd and maps its error to an exit code.
func execute(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return exitOK
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitError
}

// app holds the process streams so commands can be exercised in tests.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	terminal func(io.Writer) bool

	// home and dir override the config search directories when set.
	home string
	dir  string
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, terminal: isTerminal}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func rootCmd(a *app) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Contract upgrade compatibility checker",
		Long: `contractcompat compares two versions of an account's contract
declarations and decides whether values already in storage remain valid
under the new version.

Schema files are YAML documents listing contracts, their members and the
tombstones retiring removed type names.

Exit status is 0 when the upgrade is allowed, 3 when it is rejected and 1
on any other error.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		checkCmd(a, &flags),
		layoutCmd(a, &flags),
		fingerprintCmd(a, &flags),
		initConfigCmd(a, &flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(a.stdout, "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}
