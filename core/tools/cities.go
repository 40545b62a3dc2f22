package tools

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// CityTable maps localized city names to the name the weather API expects.
type CityTable map[string]string

// DefaultCityTable returns the built-in Chinese → English city names.
func DefaultCityTable() CityTable {
	return CityTable{
		"纽约":  "New York",
		"伦敦":  "London",
		"东京":  "Tokyo",
		"北京":  "Beijing",
		"上海":  "Shanghai",
		"巴黎":  "Paris",
		"柏林":  "Berlin",
		"悉尼":  "Sydney",
		"莫斯科": "Moscow",
		"迪拜":  "Dubai",
	}
}

// Resolve returns the lookup name for city. Unknown names pass through unchanged.
func (t CityTable) Resolve(city string) string {
	if name, ok := t[city]; ok {
		return name
	}
	return city
}

// LoadCityTable returns the default table overlaid with the YAML mapping in path.
// An empty path yields the default table.
func LoadCityTable(path string) (CityTable, error) {
	table := DefaultCityTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read city table: %w", err)
	}

	var overlay map[string]string
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse city table %s: %w", path, err)
	}
	maps.Copy(table, overlay)
	return table, nil
}
