package tier

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads tier definitions from a YAML file and builds a catalog.
// The file format is a list of definitions:
//
//	- name: Free
//	  max_products: 1
//	  max_monthly_views: 5000
//	- name: Basic
//	  price_in_cents: 1900
//	  price_id: price_1abc
//	  ...
//
// It is subject to the same validation as NewCatalog.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("read %s: %w", path, err))
	}

	var defs []Definition
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("parse %s: %w", path, err))
	}

	return NewCatalog(defs...)
}
