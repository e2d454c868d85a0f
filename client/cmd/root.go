package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var addr string
var deviceName string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "panosctl",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("address") {
			if a := defaultAddress(); a != "" {
				addr = a
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&addr, "address", "a", "localhost:56100", "driver daemon address")
	rootCmd.PersistentFlags().StringVarP(&deviceName, "device", "", "", "device name")
}

// defaultAddress reads the daemon address from ~/.panosctl.yaml, if present.
func defaultAddress() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	b, err := os.ReadFile(filepath.Join(home, ".panosctl.yaml"))
	if err != nil {
		return ""
	}
	var cfg struct {
		Address string `yaml:"address"`
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return ""
	}
	return cfg.Address
}

func devicePath(suffix string) (string, error) {
	if deviceName == "" {
		return "", fmt.Errorf("--device is required")
	}
	return fmt.Sprintf("http://%s/devices/%s%s", addr, deviceName, suffix), nil
}

// call issues one request against the daemon and returns the decoded body.
// Non-2xx replies are turned into errors carrying the daemon's message.
func call(method, suffix string, reqBody interface{}) (map[string]interface{}, error) {
	url, err := devicePath(suffix)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := &http.Client{Timeout: 5 * time.Minute}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg, ok := out["error"].(string); ok {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("request failed with HTTP %s", resp.Status)
	}
	return out, nil
}
