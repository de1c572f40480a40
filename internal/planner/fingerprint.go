package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zeebo/blake3"
)

// Fingerprint hashes the normalized input so identical requests can be
// correlated across logs and traces. Plan and task ids are random, so the
// fingerprint is the stable handle for a request.
func Fingerprint(in GoalInput) (string, error) {
	canonical := map[string]interface{}{
		"goal":                  strings.TrimSpace(in.Goal),
		"context":               in.Context,
		"domain":                strings.ToLower(in.Domain),
		"resources":             in.Resources,
		"working_hours_per_day": in.WorkingHoursPerDay,
		"priority_level":        in.PriorityLevel,
	}
	if in.Deadline != nil {
		canonical["deadline"] = in.Deadline.UTC().Format(time.RFC3339Nano)
	}

	// encoding/json writes map keys in sorted order.
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("canonicalize goal input: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(data); err != nil {
		return "", fmt.Errorf("hash goal input: %w", err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
