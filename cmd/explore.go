package cmd

import (
	"path/filepath"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/raphaelvigee/gmk/system"
)

func init() {
	rootCmd.AddCommand(explorerCmd)
}

var explorerCmd = &cobra.Command{
	Use:   "explore <file> <target>",
	Short: "Explore target",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		targetName := args[1]

		w, err := load(filePath)
		if err != nil {
			return err
		}

		plan, err := w.maker(system.DryRun{}).Plan(targetName)
		if err != nil {
			return err
		}

		repr.Println(plan)

		return nil
	},
}
