package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "manage device sessions",
}

var sessionOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "open a session to the device",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := call(http.MethodPost, "/session", nil)
		if err != nil {
			return err
		}
		fmt.Printf("session to %s opened\n", deviceName)
		return nil
	},
	SilenceUsage: true,
}

var sessionCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "close the session, releasing device locks",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := call(http.MethodDelete, "/session", nil)
		if err != nil {
			return err
		}
		fmt.Printf("session to %s closed\n", deviceName)
		return nil
	},
	SilenceUsage: true,
}

var sessionAliveCmd = &cobra.Command{
	Use:   "alive",
	Short: "check whether the session is alive",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := call(http.MethodGet, "/alive", nil)
		if err != nil {
			return err
		}
		fmt.Printf("is_alive: %v\n", out["is_alive"])
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionOpenCmd)
	sessionCmd.AddCommand(sessionCloseCmd)
	sessionCmd.AddCommand(sessionAliveCmd)
}
