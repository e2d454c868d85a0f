package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var mergeFile string
var mergeStatements []string

var configMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "stage incremental set-style statements",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{}
		if mergeFile != "" {
			body["file"] = mergeFile
		}
		if len(mergeStatements) > 0 {
			body["content"] = strings.Join(mergeStatements, "\n")
		}
		_, err := call(http.MethodPost, "/config/merge", body)
		if err != nil {
			return err
		}
		fmt.Println("candidate staged (merge)")
		return nil
	},
	SilenceUsage: true,
}

func init() {
	configCmd.AddCommand(configMergeCmd)
	configMergeCmd.Flags().StringVarP(&mergeFile, "file", "f", "", "statements file, as seen by the daemon")
	configMergeCmd.Flags().StringSliceVarP(&mergeStatements, "set", "s", nil, "inline set-style statement, repeatable")
}
