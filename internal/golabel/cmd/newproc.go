package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"golabel/internal/analysis"
	"golabel/internal/elfx"
	"golabel/internal/imagedb"
)

func init() {
	newprocCmd.Flags().BoolP("full", "f", false, "List every labeled pointer in the summary")
	newprocCmd.Flags().Int("lookback", 0, "Backward instruction walk bound at each call site (0 = default)")
	rootCmd.AddCommand(newprocCmd)
}

var newprocCmd = &cobra.Command{
	Use:   "newproc <binary>",
	Short: "Label function pointers passed to the goroutine scheduler",
	Long: `Newproc finds call sites of runtime.newproc and labels the goroutine
function pointer pushed at each one. The operand heuristic assumes a
push-based x86 calling convention and is best effort; sites that do not
match are skipped. The function rename pass runs first so the scheduler
entry point can be found by name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		img, err := elfx.Open(path)
		if err != nil {
			return err
		}
		defer img.Close()

		reader, err := analysis.NewReader(img, img.PointerSize())
		if err != nil {
			return err
		}
		db := imagedb.New(img)

		if _, err := analysis.RenameFunctions(reader, db); err != nil {
			return fmt.Errorf("rename functions: %w", err)
		}

		lookback, _ := cmd.Flags().GetInt("lookback")
		strat := analysis.PushPairRecovery{Lookback: lookback}
		renamed, err := analysis.RenameNewprocPointers(reader, db, strat)
		if err != nil {
			return fmt.Errorf("rename newproc pointers: %w", err)
		}

		report, err := buildReport(path, "newproc", renamed, db, "fptr_")
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		full, _ := cmd.Flags().GetBool("full")
		return emit(report, asJSON, full)
	},
}
