package monitor

import "time"

type Component struct {
	Online  bool   `json:"online"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

type Status struct {
	Healthy    bool                 `json:"healthy"`
	Components map[string]Component `json:"components"`
	LastCheck  time.Time            `json:"last_check"`
}
