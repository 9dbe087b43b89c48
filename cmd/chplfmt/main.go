package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"chplfmt/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "chplfmt",
	Short: "Chapel source formatter",
	Long:  `chplfmt normalizes whitespace, operator spacing and brace indentation of Chapel sources`,
	// ошибки печатает main, usage только при неверных флагах
	SilenceErrors:     true,
	PersistentPreRunE: preRun,
}

// runCleanup is set by preRun once profiling and the tracer are running.
var runCleanup = func() {}

// main registers subcommands and persistent flags, executes the root command
// and exits with status 1 when it returns an error.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)

	registerGlobalFlags(rootCmd)

	err := rootCmd.Execute()
	runCleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chplfmt: %v\n", err)
		os.Exit(1)
	}
}

// registerGlobalFlags объявляет флаги, общие для всех подкоманд.
func registerGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show per file")
	flags.String("config", "", "path to chplfmt.toml (default: search upward from the first path)")
	flags.Int("jobs", 0, "max parallel workers (0=config or auto)")
	flags.Bool("no-cache", false, "disable the format cache")
	flags.Bool("clear-cache", false, "empty the format cache before running")
	flags.String("ui", "auto", "progress UI (auto|on|off)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage mode (stream|ring; ring writes the last events on exit)")
	flags.Int("trace-ring-size", 4096, "ring buffer capacity for ring mode")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")
}

func preRun(cmd *cobra.Command, _ []string) error {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	useColor, err := resolveColor(colorFlag, isTerminal(os.Stdout))
	if err != nil {
		return err
	}
	color.NoColor = !useColor

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	stopTracing, err := setupTracing(cmd)
	if err != nil {
		stopProfiling()
		return err
	}
	runCleanup = func() {
		stopTracing()
		stopProfiling()
	}
	return nil
}

func resolveColor(flag string, tty bool) (bool, error) {
	switch flag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return tty, nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", flag)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
