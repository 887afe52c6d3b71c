package pipeline

import (
	"fmt"
	"strings"
)

// ReplenishPolicy decides when a finished fetch slot is refilled.
type ReplenishPolicy string

const (
	// ReplenishOnMiss refills only after a rejected or failed fetch.
	ReplenishOnMiss ReplenishPolicy = "on-miss"
	// ReplenishAlways refills after every fetch, keeping F slots busy.
	ReplenishAlways ReplenishPolicy = "always"
)

// ParseReplenishPolicy parses a policy name; empty selects ReplenishOnMiss.
func ParseReplenishPolicy(value string) (ReplenishPolicy, error) {
	switch ReplenishPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", ReplenishOnMiss:
		return ReplenishOnMiss, nil
	case ReplenishAlways:
		return ReplenishAlways, nil
	default:
		return "", fmt.Errorf("replenish policy: unsupported value %q (want %q or %q)", value, ReplenishOnMiss, ReplenishAlways)
	}
}

func (p ReplenishPolicy) refill(valid bool) bool {
	return !valid || p == ReplenishAlways
}
