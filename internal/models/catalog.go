package models

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"animator-service/internal/entity"
)

// Model describes the limits a remote model enforces on a single request.
type Model struct {
	ID                 string   `json:"id" yaml:"id"`
	DisplayName        string   `json:"displayName" yaml:"displayName"`
	MaxReferenceImages int      `json:"maxReferenceImages" yaml:"maxReferenceImages"`
	SupportsLastFrame  bool     `json:"supportsLastFrame" yaml:"supportsLastFrame"`
	MaxDuration        int      `json:"maxDuration" yaml:"maxDuration"`
	Resolutions        []string `json:"supportedResolutions" yaml:"supportedResolutions"`
	AspectRatios       []string `json:"supportedAspectRatios" yaml:"supportedAspectRatios"`

	// LastFrameOverridesReferences drops reference images from a request that
	// also carries a last frame instead of rejecting it.
	LastFrameOverridesReferences bool `json:"lastFrameOverridesReferences,omitempty" yaml:"lastFrameOverridesReferences,omitempty"`

	// ReferenceBlockedResolutions lists resolutions that cannot be combined with reference images.
	ReferenceBlockedResolutions []string `json:"referenceBlockedResolutions,omitempty" yaml:"referenceBlockedResolutions,omitempty"`

	Defaults entity.ModelSettings `json:"defaults" yaml:"defaults"`
}

func (m Model) SupportsResolution(r string) bool {
	return contains(m.Resolutions, r)
}

func (m Model) SupportsAspectRatio(a string) bool {
	return contains(m.AspectRatios, a)
}

func (m Model) BlocksReferencesAt(r string) bool {
	return contains(m.ReferenceBlockedResolutions, r)
}

type Catalog struct {
	models map[string]Model
}

func NewCatalog(models ...Model) *Catalog {
	c := &Catalog{models: make(map[string]Model, len(models))}
	for _, m := range models {
		c.models[m.ID] = m
	}
	return c
}

func (c *Catalog) Get(id string) (Model, bool) {
	m, ok := c.models[id]
	return m, ok
}

// List returns the models ordered by id.
func (c *Catalog) List() []Model {
	out := make([]Model, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type catalogFile struct {
	Models []Model `yaml:"models"`
}

// LoadFile overlays the built-in catalog with the models declared in a YAML file.
// Entries with an existing id replace the built-in definition.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read model catalog %s", path)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parse model catalog %s", path)
	}

	c := Default()
	for _, m := range f.Models {
		if m.ID == "" {
			return nil, errors.Errorf("model catalog %s: entry without id", path)
		}
		c.models[m.ID] = m
	}
	return c, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
