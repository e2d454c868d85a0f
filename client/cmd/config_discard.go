package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var configDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "discard the staged candidate, restoring the backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := call(http.MethodPost, "/config/discard", nil)
		if err != nil {
			return err
		}
		fmt.Println("candidate discarded")
		return nil
	},
	SilenceUsage: true,
}

func init() {
	configCmd.AddCommand(configDiscardCmd)
}
