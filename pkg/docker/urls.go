package docker

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// URLMap maps container names to their public web URL
type URLMap map[string]string

// LoadURLMap reads a YAML file of the form
//
//	containers:
//	  npm-app-1: https://example.com
//	  app-db: null
//
// A missing file yields an empty map.
func LoadURLMap(path string) (URLMap, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return URLMap{}, nil
	}
	if err != nil {
		return nil, err
	}

	var file struct {
		Containers map[string]*string `yaml:"containers"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	urls := make(URLMap, len(file.Containers))
	for name, value := range file.Containers {
		if value != nil && *value != "" {
			urls[name] = *value
		}
	}
	return urls, nil
}

// Lookup returns the URL for a container, or nil when none is configured
func (m URLMap) Lookup(name string) *string {
	value, ok := m[name]
	if !ok {
		return nil
	}
	return &value
}
