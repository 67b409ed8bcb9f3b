package monitor

import "time"

// Status is the last observed reachability of each dependency.
type Status struct {
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}
