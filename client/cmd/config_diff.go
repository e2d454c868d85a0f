package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var configDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "show the diff of candidate against running configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := call(http.MethodGet, "/config/diff", nil)
		if err != nil {
			return err
		}
		if diff, ok := out["diff"].(string); ok {
			fmt.Println(diff)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	configCmd.AddCommand(configDiffCmd)
}
