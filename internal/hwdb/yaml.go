package hwdb

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// fragment is the on-disk shape of an override file.
type fragment struct {
	Entries []Entry `yaml:"entries"`
}

// LoadFragment parses a single override file.
func LoadFragment(data []byte) ([]Entry, error) {
	var f fragment
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFragment, err)
	}
	for i := range f.Entries {
		if _, _, err := f.Entries[i].resolveKey(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := f.Entries[i].validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return f.Entries, nil
}

// LoadDir reads every *.yaml and *.yml file in dir, in lexical filename
// order, and concatenates their entries. Later files win on merge-key
// collisions when the result is passed through Merge, so operators can
// order overrides with numeric prefixes (10-vendor.yaml, 20-site.yaml).
//
// A missing directory is not an error: overrides are optional.
func LoadDir(dir string) ([]Entry, error) {
	names, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("hwdb: read overrides dir: %w", err)
	}

	var files []string
	for _, de := range names {
		if de.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(de.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		files = append(files, de.Name())
	}
	sort.Strings(files)

	var out []Entry
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("hwdb: read %s: %w", name, err)
		}
		entries, err := LoadFragment(data)
		if err != nil {
			return nil, fmt.Errorf("hwdb: %s: %w", name, err)
		}
		out = append(out, entries...)
	}
	return out, nil
}
