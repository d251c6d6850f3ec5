package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// loadFile reads the optional YAML config file into a flat key/value map.
// Keys use the same names as the environment variables. A missing or broken
// file is not an error; environment variables and defaults still apply.
func loadFile(path string) map[string]string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return ParseFile(data)
}

// ParseFile parses config file contents into a key/value map. Scalar values
// of any YAML type are stringified so the lookup path stays uniform.
func ParseFile(data []byte) map[string]string {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			out[k] = fmt.Sprintf("%t", val)
		case int, int64, float64:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}
