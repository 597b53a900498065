package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"golabel/internal/analysis"
	"golabel/internal/elfx"
	"golabel/internal/imagedb"
)

func init() {
	renameCmd.Flags().BoolP("full", "f", false, "List every renamed function in the summary")
	rootCmd.AddCommand(renameCmd)
}

var renameCmd = &cobra.Command{
	Use:   "rename <binary>",
	Short: "Rename functions from the Go runtime function table",
	Args:  cobra.ExactArgs(1),
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

		renamed, err := analysis.RenameFunctions(reader, db)
		if err != nil {
			return fmt.Errorf("rename functions: %w", err)
		}

		report, err := buildReport(path, "rename", renamed, db, analysis.GoFuncPrefix)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		full, _ := cmd.Flags().GetBool("full")
		return emit(report, asJSON, full)
	},
}
