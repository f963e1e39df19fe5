package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Request describes one scheduling run: how many blocks the day has, who is
// absent, and which meetings are pinned per block. Fixed is indexed by block
// (0-based); entries list role names. A Request is loadable from YAML or
// JSON and the same shape travels over the service wire.
type Request struct {
	Blocks int        `yaml:"blocks" json:"blocks"`
	Absent []string   `yaml:"absent" json:"absent"`
	Fixed  [][]string `yaml:"fixed" json:"fixed"`
	Policy Policy     `yaml:"policy" json:"policy"`
}

// Normalize trims every name, drops empties and duplicates, and pads Fixed
// out to Blocks entries so callers can index it directly.
func (r *Request) Normalize() {
	r.Absent = cleanNames(r.Absent)
	fixed := make([][]string, len(r.Fixed))
	for i, roles := range r.Fixed {
		fixed[i] = cleanNames(roles)
	}
	r.Fixed = fixed
	for len(r.Fixed) < r.Blocks {
		r.Fixed = append(r.Fixed, nil)
	}
	r.Policy.Normalize()
}

// Validate checks the request shape. Call Normalize first.
func (r Request) Validate() error {
	if r.Blocks < 1 {
		return fmt.Errorf("schedule: blocks must be at least 1, got %d", r.Blocks)
	}
	if len(r.Fixed) > r.Blocks {
		return fmt.Errorf("schedule: fixed meetings name block %d but the day has %d blocks", len(r.Fixed), r.Blocks)
	}
	return nil
}

// LoadRequest reads a request file, dispatching on the extension. The result
// is not yet normalized or validated; Scheduler.Run does both so command
// line overrides can be applied in between.
func LoadRequest(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("schedule: read request: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseRequestJSON(data)
	case ".yaml", ".yml":
		return ParseRequestYAML(data)
	default:
		return Request{}, fmt.Errorf("schedule: unsupported request format %q (want .json, .yaml, or .yml)", filepath.Ext(path))
	}
}

// ParseRequestJSON decodes a request from JSON.
func ParseRequestJSON(data []byte) (Request, error) {
	var r Request
	if err := json.Unmarshal(data, &r); err != nil {
		return Request{}, fmt.Errorf("schedule: parse request json: %w", err)
	}
	return r, nil
}

// ParseRequestYAML decodes a request from YAML.
func ParseRequestYAML(data []byte) (Request, error) {
	var r Request
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Request{}, fmt.Errorf("schedule: parse request yaml: %w", err)
	}
	return r, nil
}

// cleanNames trims entries and drops empties and duplicates, preserving the
// first occurrence order.
func cleanNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
