// Package limits loads the external category-to-budget mapping that is
// synchronized into the ledger at startup.
package limits

import (
	"encoding/json"
	"fmt"
	"os"

	"expensealert/internal/core"
)

// LoadFile reads a JSON object of category names to non-negative budget
// limits. A missing file, unreadable JSON, or a negative limit yields a
// *core.ConfigurationError; the caller surfaces it before the watch
// pipeline starts.
func LoadFile(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.ConfigurationError{Source: path, Err: err}
	}

	var mapping map[string]float64
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, &core.ConfigurationError{Source: path, Err: fmt.Errorf("decode limits: %w", err)}
	}

	for category, limit := range mapping {
		cl := core.CategoryLimit{Category: category, Limit: limit}
		if err := cl.Validate(); err != nil {
			return nil, &core.ConfigurationError{Source: path, Err: err}
		}
	}

	return mapping, nil
}
