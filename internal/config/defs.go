package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/transit/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefsFile is the structure of a definitions file.
type DefsFile struct {
	Definitions []domain.DependencyDef `yaml:"definitions" json:"definitions"`
}

// LoadDefs reads dependency definitions from a YAML or JSON file.
// The format is chosen by extension; anything other than .json is read as YAML.
func LoadDefs(path string) ([]domain.DependencyDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}

	var file DefsFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if len(file.Definitions) == 0 {
		return nil, &domain.ConfigurationError{Reason: fmt.Sprintf("no definitions in %s", filepath.Base(path))}
	}
	return file.Definitions, nil
}
