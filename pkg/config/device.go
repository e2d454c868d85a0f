package config

import (
	"errors"
	"fmt"
	"time"
)

type DeviceConfig struct {
	Name        string        `yaml:"name,omitempty" json:"name,omitempty"`
	Address     string        `yaml:"address,omitempty" json:"address,omitempty"`
	Port        int           `yaml:"port,omitempty" json:"port,omitempty"`
	SSHPort     int           `yaml:"ssh-port,omitempty" json:"ssh-port,omitempty"`
	Credentials *Creds        `yaml:"credentials,omitempty" json:"credentials,omitempty"`
	TLS         *TLS          `yaml:"tls,omitempty" json:"tls,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// ConfigLock enables session-level locking: the config and commit
	// locks are taken on open and held until close.
	ConfigLock        bool   `yaml:"config-lock,omitempty" json:"config-lock,omitempty"`
	ConfigLockComment string `yaml:"config-lock-comment,omitempty" json:"config-lock-comment,omitempty"`
}

type Creds struct {
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	APIKey   string `yaml:"api-key,omitempty" json:"api-key,omitempty"`
}

func (d *DeviceConfig) ValidateSetDefaults() error {
	if d.Address == "" {
		return errors.New("missing device address")
	}
	if d.Name == "" {
		d.Name = d.Address
	}
	if d.Port <= 0 {
		d.Port = defaultAPIPort
	}
	if d.SSHPort <= 0 {
		d.SSHPort = defaultSSHPort
	}
	if d.Timeout <= 0 {
		d.Timeout = defaultTimeout
	}
	if d.ConfigLockComment == "" {
		d.ConfigLockComment = defaultLockComment
	}
	if d.TLS == nil {
		d.TLS = &TLS{SkipVerify: true}
	}
	if d.Credentials == nil {
		return fmt.Errorf("device %q: missing credentials", d.Name)
	}
	if d.Credentials.APIKey == "" &&
		(d.Credentials.Username == "" || d.Credentials.Password == "") {
		return fmt.Errorf("device %q: credentials require an api-key or a username and password", d.Name)
	}
	return nil
}
