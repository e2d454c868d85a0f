package config

import "time"

const (
	defaultHTTPAddress = ":56100"
	defaultAPIPort     = 443
	defaultSSHPort     = 22
	defaultTimeout     = 60 * time.Second
	defaultLockComment = "managed-session-lock"
)
