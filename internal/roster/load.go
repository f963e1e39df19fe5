package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a roster file and dispatches on the extension: .json for the
// classic object-of-lists format, .yaml/.yml for the equivalent mapping.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("roster: unsupported format %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// ParseJSON decodes an object of role name to member-name list. Decoding
// walks the token stream instead of unmarshalling into a map so the role
// enumeration order matches the file.
func ParseJSON(data []byte) (*Roster, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("roster: parse json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("roster: expected an object of role name to member list")
	}
	var roles []Role
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("roster: parse json: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("roster: unexpected key token %v", keyTok)
		}
		var members []string
		if err := dec.Decode(&members); err != nil {
			return nil, fmt.Errorf("roster: role %q: expected a list of names: %w", name, err)
		}
		roles = append(roles, Role{Name: name, Members: members})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("roster: parse json: %w", err)
	}
	return New(roles)
}

// ParseYAML decodes a mapping of role name to member-name list, preserving
// the mapping order via the node API.
func ParseYAML(data []byte) (*Roster, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("roster: parse yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("roster: empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("roster: expected a mapping of role name to member list")
	}
	roles := make([]Role, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		var members []string
		if err := root.Content[i+1].Decode(&members); err != nil {
			return nil, fmt.Errorf("roster: role %q: expected a list of names: %w", key.Value, err)
		}
		roles = append(roles, Role{Name: key.Value, Members: members})
	}
	return New(roles)
}
