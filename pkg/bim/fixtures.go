package bim

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures
var embedded embed.FS

// Fixtures is a set of bridges and models loaded from YAML.
type Fixtures struct {
	Bridges []Bridge
	Models  []Model
}

// DefaultFixtures returns the built-in demo data.
func DefaultFixtures() (*Fixtures, error) {
	sub, err := fs.Sub(embedded, "fixtures")
	if err != nil {
		return nil, err
	}
	return LoadFixtures(sub)
}

// LoadFixturesDir loads fixtures from a directory laid out like the
// built-in set: bridges.yaml plus models/*.yaml.
func LoadFixturesDir(dir string) (*Fixtures, error) {
	return LoadFixtures(os.DirFS(dir))
}

// LoadFixtures reads bridges.yaml (optional) and every models/*.yaml file,
// validating each model.
func LoadFixtures(fsys fs.FS) (*Fixtures, error) {
	f := &Fixtures{}
	data, err := fs.ReadFile(fsys, "bridges.yaml")
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &f.Bridges); err != nil {
			return nil, fmt.Errorf("bridges.yaml: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	names, err := fs.Glob(fsys, "models/*.yaml")
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	for _, name := range names {
		m, err := readModel(fsys, name)
		if err != nil {
			return nil, err
		}
		f.Models = append(f.Models, m)
	}
	return f, nil
}

func readModel(fsys fs.FS, name string) (Model, error) {
	var m Model
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%s: %w", name, err)
	}
	if m.Metadata.ID == "" {
		m.Metadata.ID = strings.TrimSuffix(path.Base(name), ".yaml")
	}
	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}
