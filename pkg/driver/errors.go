package driver

import "fmt"

// ConnectionError reports a failure to open or authenticate one of the two
// device channels.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ReplaceConfigError reports a failure of the full-replace path: staging a
// candidate file, committing it, discarding it or rolling back.
type ReplaceConfigError struct {
	Msg string
	Err error
}

func (e *ReplaceConfigError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *ReplaceConfigError) Unwrap() error { return e.Err }

// MergeConfigError reports a failure of the incremental merge path: staging
// set-style statements or committing a merged candidate.
type MergeConfigError struct {
	Msg string
	Err error
}

func (e *MergeConfigError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *MergeConfigError) Unwrap() error { return e.Err }
