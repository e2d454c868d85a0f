package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var configRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "revert the last committed change to the backup snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := call(http.MethodPost, "/config/rollback", nil)
		if err != nil {
			return err
		}
		fmt.Println("rollback committed")
		return nil
	},
	SilenceUsage: true,
}

func init() {
	configCmd.AddCommand(configRollbackCmd)
}
