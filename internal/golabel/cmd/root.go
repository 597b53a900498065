package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"golabel/internal/golabel/log"
)

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output results as JSON for regression testing")
}

var rootCmd = &cobra.Command{
	Use:   "golabel",
	Short: "Recover function names in compiled Go binaries",
	Long: `Golabel recovers function-naming metadata embedded in compiled Go
binaries by walking the runtime's pclntab and labeling the functions it
describes. A second, best-effort pass labels the function pointers passed
to the goroutine scheduler entry point.`,
	Example: `
# Rename functions from the pclntab
golabel rename /path/to/binary

# Label goroutine function pointers, with debug logging
golabel newproc -d /path/to/binary
  `,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.Setup(debug)
	},
}

func Execute() {
	// Bypass fang's rendering when output is being piped or the user asked
	// for plain output.
	plain := os.Getenv("GOLABEL_PLAIN_OUTPUT") == "1"
	if !plain && !term.IsTerminal(os.Stdout.Fd()) {
		plain = true
	}

	if plain {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
	} else {
		if err := fang.Execute(
			context.Background(),
			rootCmd,
			fang.WithNotifySignal(os.Interrupt),
		); err != nil {
			os.Exit(1)
		}
	}
}
