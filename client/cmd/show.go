package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "retrieve operational state from the device",
}

func showState(suffix string) error {
	out, err := call(http.MethodGet, suffix, nil)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

var showFactsCmd = &cobra.Command{
	Use:   "facts",
	Short: "device model, version, serial and uptime",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showState("/state/facts")
	},
	SilenceUsage: true,
}

var showInterfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "per-interface state and counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showState("/state/interfaces")
	},
	SilenceUsage: true,
}

var showInterfacesIPCmd = &cobra.Command{
	Use:   "interfaces-ip",
	Short: "ipv4 and ipv6 addresses per interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showState("/state/interfaces/ip")
	},
	SilenceUsage: true,
}

var showLLDPCmd = &cobra.Command{
	Use:   "lldp",
	Short: "lldp neighbors per local interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showState("/state/lldp")
	},
	SilenceUsage: true,
}

var routeDestination string
var routeProtocol string

var showRoutesCmd = &cobra.Command{
	Use:   "routes",
	Short: "routing table entries, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if routeDestination != "" {
			q.Set("destination", routeDestination)
		}
		if routeProtocol != "" {
			q.Set("protocol", routeProtocol)
		}
		suffix := "/state/routes"
		if len(q) > 0 {
			suffix += "?" + q.Encode()
		}
		return showState(suffix)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showFactsCmd)
	showCmd.AddCommand(showInterfacesCmd)
	showCmd.AddCommand(showInterfacesIPCmd)
	showCmd.AddCommand(showLLDPCmd)
	showCmd.AddCommand(showRoutesCmd)

	showRoutesCmd.Flags().StringVarP(&routeDestination, "destination", "d", "", "destination prefix to look up")
	showRoutesCmd.Flags().StringVarP(&routeProtocol, "protocol", "p", "", "restrict to one routing protocol")
}
