package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var commitMessage string

var configCommitCmd = &cobra.Command{
	Use:   "commit",
	Short: "commit the staged candidate configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := call(http.MethodPost, "/config/commit", map[string]string{"message": commitMessage})
		if err != nil {
			return err
		}
		fmt.Println("commit succeeded")
		return nil
	},
	SilenceUsage: true,
}

func init() {
	configCmd.AddCommand(configCommitCmd)
	configCommitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit comment")
}
