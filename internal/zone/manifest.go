package zone

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Layer describes one overlay layer in the manifest.
type Layer struct {
	Kind    string            `yaml:"kind"`
	Name    string            `yaml:"name"`
	URL     string            `yaml:"url,omitempty"`     // remote bundle (zip) location
	Path    string            `yaml:"path,omitempty"`    // local shapefile path
	Visible *bool             `yaml:"visible,omitempty"` // default visibility; nil = visible
	Source  string            `yaml:"source,omitempty"`
	Fields  map[string]string `yaml:"fields,omitempty"`
}

// DefaultVisible reports the layer's initial visibility toggle.
func (l Layer) DefaultVisible() bool {
	return l.Visible == nil || *l.Visible
}

// Manifest lists the overlay layers to load.
type Manifest struct {
	Layers []Layer `yaml:"layers"`
}

// LoadManifest reads a layer manifest from a YAML file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zone: read manifest %s", path)
	}

	var wrapper struct {
		Zones Manifest `yaml:"zones"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "zone: parse manifest")
	}

	m := &wrapper.Zones
	for i, l := range m.Layers {
		if _, err := ParseKind(l.Kind); err != nil {
			return nil, eris.Wrapf(err, "zone: manifest layer %d", i)
		}
		if l.URL == "" && l.Path == "" {
			return nil, eris.Errorf("zone: manifest layer %d (%s) needs a url or path", i, l.Name)
		}
	}
	return m, nil
}
