package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile builds a static catalog from a JSON item-definition file.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	return NewStatic(items), nil
}
