package metadata

import (
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ToJSON serializes the package model with indentation.
func (p *Package) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", p.Name, err)
	}
	return data, nil
}

// ToYAML serializes the package model as YAML.
func (p *Package) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", p.Name, err)
	}
	return data, nil
}

