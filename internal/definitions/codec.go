package definitions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	toml "github.com/pelletier/go-toml"
)

var ErrMalformedDefinitions = errors.New("malformed definitions")

func ParseClusterDefinitionSet(data []byte) (*ClusterDefinitionSet, error) {
	var defs ClusterDefinitionSet
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDefinitions, err)
	}
	return &defs, nil
}

func DecodeClusterDefinitionSet(r io.Reader) (*ClusterDefinitionSet, error) {
	var defs ClusterDefinitionSet
	if err := json.NewDecoder(r).Decode(&defs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDefinitions, err)
	}
	return &defs, nil
}

func ParseVirtualHostDefinitionSet(data []byte) (*VirtualHostDefinitionSet, error) {
	var defs VirtualHostDefinitionSet
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDefinitions, err)
	}
	return &defs, nil
}

func DecodeVirtualHostDefinitionSet(r io.Reader) (*VirtualHostDefinitionSet, error) {
	var defs VirtualHostDefinitionSet
	if err := json.NewDecoder(r).Decode(&defs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDefinitions, err)
	}
	return &defs, nil
}

// LoadVirtualHostDefinitionSetTOML reads a topology file with [[queues]],
// [[exchanges]], [[bindings]], [[policies]] and [[parameters]] tables.
func LoadVirtualHostDefinitionSetTOML(data []byte) (*VirtualHostDefinitionSet, error) {
	var defs VirtualHostDefinitionSet
	if err := toml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDefinitions, err)
	}
	return &defs, nil
}

// Encode writes the set as indented JSON ready for import.
func Encode(w io.Writer, defs any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(defs)
}
