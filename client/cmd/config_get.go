package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var scope string

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "retrieve running/candidate/startup configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := call(http.MethodGet, "/config?scope="+scope, nil)
		if err != nil {
			return err
		}
		for _, k := range []string{"running", "candidate", "startup"} {
			if v, ok := out[k].(string); ok && v != "" {
				fmt.Printf("--- %s ---\n%s\n", k, v)
			}
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configGetCmd.Flags().StringVarP(&scope, "scope", "", "all", "config scope: running, candidate, startup or all")
}
