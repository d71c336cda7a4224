package ruleset

import (
	"fmt"
	"os"
	"strings"
)

// LoadFile reads a YAML ruleset from path. An empty path yields Default.
func LoadFile(path string) (*Ruleset, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ruleset: %w", err)
	}
	defer f.Close()
	return Load(f)
}
