package types

import "fmt"

// Failure is the normalized record of a list request that did not return a fragment.
// Status is zero when no response was received at all.
type Failure struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	Text       string `json:"text"`
	JSON       any    `json:"json,omitempty"`
}

func (f *Failure) Error() string {
	if f.Status == 0 {
		return fmt.Sprintf("request failed: %s", f.StatusText)
	}
	return fmt.Sprintf("request failed: %d %s", f.Status, f.StatusText)
}
