package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var replaceFile string

var configReplaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "stage a full candidate configuration from a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := call(http.MethodPost, "/config/replace", map[string]string{"file": replaceFile})
		if err != nil {
			return err
		}
		fmt.Println("candidate staged (replace)")
		return nil
	},
	SilenceUsage: true,
}

func init() {
	configCmd.AddCommand(configReplaceCmd)
	configReplaceCmd.Flags().StringVarP(&replaceFile, "file", "f", "", "config file, as seen by the daemon")
	configReplaceCmd.MarkFlagRequired("file")
}
