package geography

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Province is an administrative region hospitals register under. Cities are
// advisory; hospital registrations may introduce cities not yet listed.
type Province struct {
	Name   string   `yaml:"name" json:"name"`
	Cities []string `yaml:"cities" json:"cities"`
}

type Catalog struct {
	Provinces []Province `yaml:"provinces" json:"provinces"`
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.Provinces) == 0 {
		return Catalog{}, fmt.Errorf("geography catalog empty")
	}
	return cat, nil
}

// Valid reports whether name matches a catalog province, case-insensitively.
func (c Catalog) Valid(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

func (c Catalog) Lookup(name string) (Province, bool) {
	for _, p := range c.Provinces {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Province{}, false
}

func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.Provinces))
	for _, p := range c.Provinces {
		names = append(names, p.Name)
	}
	return names
}

func DefaultCatalog() Catalog {
	return Catalog{Provinces: []Province{
		{Name: "Punjab", Cities: []string{"Lahore", "Rawalpindi", "Multan", "Faisalabad"}},
		{Name: "Sindh", Cities: []string{"Karachi", "Hyderabad", "Sukkur"}},
		{Name: "Balochistan", Cities: []string{"Quetta", "Gwadar"}},
		{Name: "Khyber Pakhtunkhwa", Cities: []string{"Peshawar", "Abbottabad"}},
		{Name: "Gilgit Baltistan", Cities: []string{"Gilgit", "Skardu"}},
	}}
}
