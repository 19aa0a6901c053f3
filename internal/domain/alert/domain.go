package alert

import "time"

type State string

const (
	StateUp      State = "up"
	StateDown    State = "down"
	StateWarning State = "warning"
)

// Alert is a state change reported by the poller for one check on one device.
type Alert struct {
	Device  string    `json:"device"`
	Check   string    `json:"check"`
	State   State     `json:"state"`
	InBps   float64   `json:"in_bps,omitempty"`
	OutBps  float64   `json:"out_bps,omitempty"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}
