// Package shell is the interactive command channel of the device: a
// line-oriented CLI session used for the operations the XML API does not
// cover reliably (merge staging, commit, config diff).
package shell

import (
	"fmt"
	"strings"

	"github.com/scrapli/scrapligo/driver/network"
	"github.com/scrapli/scrapligo/driver/options"
	"github.com/scrapli/scrapligo/platform"
	"github.com/scrapli/scrapligo/util"

	"github.com/netconfd/panos-driver/pkg/config"
)

const (
	privExec          = "exec"
	privConfiguration = "configuration"
)

type Shell struct {
	driver *network.Driver
}

// New opens an interactive CLI session to the device. The session stays open
// until Close is called.
func New(cfg *config.DeviceConfig) (*Shell, error) {
	opts := []util.Option{
		options.WithAuthNoStrictKey(),
		options.WithTransportType("standard"),
		options.WithPort(cfg.SSHPort),
		options.WithTimeoutOps(cfg.Timeout),
	}
	if cfg.Credentials != nil {
		opts = append(opts,
			options.WithAuthUsername(cfg.Credentials.Username),
			options.WithAuthPassword(cfg.Credentials.Password),
		)
	}

	p, err := platform.NewPlatform("paloalto_panos", cfg.Address, opts...)
	if err != nil {
		return nil, err
	}
	d, err := p.GetNetworkDriver()
	if err != nil {
		return nil, err
	}
	if err := d.Open(); err != nil {
		return nil, err
	}
	return &Shell{driver: d}, nil
}

func (s *Shell) Close() error {
	return s.driver.Close()
}

// IsAlive returns true if the underlying transport is still open.
func (s *Shell) IsAlive() bool {
	return s.driver.Transport.IsAlive()
}

// SendConfigs pushes line-oriented configuration statements through the
// session. The device does not reliably surface per-line failures here;
// errors of a bad statement show up at commit time.
func (s *Shell) SendConfigs(lines []string) error {
	mr, err := s.driver.SendConfigs(lines)
	if err != nil {
		return err
	}
	if mr.Failed != nil {
		return mr.Failed
	}
	return nil
}

// Commit activates the candidate configuration, with an optional commit
// comment.
func (s *Shell) Commit(comment string) error {
	cmd := "commit"
	if comment != "" {
		cmd = fmt.Sprintf("commit description %q", comment)
	}
	resp, err := s.driver.SendConfig(cmd)
	if err != nil {
		return err
	}
	if resp.Failed != nil {
		return resp.Failed
	}
	return nil
}

// Diff returns the device's diff of candidate against running configuration.
// The session must leave the configuration sub-mode before the diff command
// is accepted.
func (s *Shell) Diff() (string, error) {
	if err := s.driver.AcquirePriv(privExec); err != nil {
		return "", err
	}
	resp, err := s.driver.SendCommand("show config diff")
	if err != nil {
		return "", err
	}
	if resp.Failed != nil {
		return "", resp.Failed
	}
	return strings.TrimSpace(resp.Result), nil
}
