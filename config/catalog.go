package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCatalog lists the loanable items when no catalog file is configured
var DefaultCatalog = []string{"Proyektor", "Kabel HDMI", "Laptop", "Charger"}

type catalogFile struct {
	Items []string `yaml:"items"`
}

// LoadCatalog reads the loanable item names from a YAML file of the form
//
//	items:
//	  - Laptop
//	  - Charger
//
// An empty path yields DefaultCatalog.
func LoadCatalog(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), DefaultCatalog...), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog document, trimming names and dropping blanks and duplicates
func ParseCatalog(data []byte) ([]string, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse item catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Items))
	var items []string
	for _, item := range file.Items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("item catalog is empty")
	}
	return items, nil
}
