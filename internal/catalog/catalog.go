package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mindStepsAPI/internal/activity"
	"mindStepsAPI/internal/badge"
)

//go:embed catalog.yaml
var defaultYAML []byte

// DefaultMetadata is substituted for exercise ids the catalog does not know.
var DefaultMetadata = activity.Metadata{
	Category:   activity.CategoryCBT,
	SkillFocus: activity.SkillMindfulness,
}

// Catalog is the read-only exercise and badge table. Declaration order is
// preserved and is used as the tie-break order wherever ranking needs one.
type Catalog struct {
	exercises []activity.Metadata
	index     map[string]int
	coldStart []string
	badges    []badge.Badge
}

type catalogFile struct {
	Exercises []activity.Metadata `yaml:"exercises"`
	ColdStart []string            `yaml:"cold_start"`
	Badges    []badge.Badge       `yaml:"badges"`
}

func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f.Exercises, f.ColdStart, f.Badges)
}

func New(exercises []activity.Metadata, coldStart []string, badges []badge.Badge) (*Catalog, error) {
	c := &Catalog{
		exercises: make([]activity.Metadata, 0, len(exercises)),
		index:     make(map[string]int, len(exercises)),
	}

	for _, ex := range exercises {
		if ex.ID == "" {
			return nil, fmt.Errorf("exercise with empty id")
		}
		if _, dup := c.index[ex.ID]; dup {
			return nil, fmt.Errorf("duplicate exercise id %q", ex.ID)
		}
		if !ex.Category.Valid() {
			return nil, fmt.Errorf("exercise %q: unknown category %q", ex.ID, ex.Category)
		}
		if !ex.SkillFocus.Valid() {
			return nil, fmt.Errorf("exercise %q: unknown skill focus %q", ex.ID, ex.SkillFocus)
		}
		c.index[ex.ID] = len(c.exercises)
		c.exercises = append(c.exercises, ex)
	}

	for _, id := range coldStart {
		if _, ok := c.index[id]; !ok {
			return nil, fmt.Errorf("cold start exercise %q is not in the catalog", id)
		}
	}
	c.coldStart = append([]string(nil), coldStart...)

	seen := make(map[string]bool, len(badges))
	for _, b := range badges {
		if b.ID == "" {
			return nil, fmt.Errorf("badge with empty id")
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("duplicate badge id %q", b.ID)
		}
		seen[b.ID] = true
		if !b.Rarity.Valid() {
			return nil, fmt.Errorf("badge %q: unknown rarity %q", b.ID, b.Rarity)
		}
		if _, ok := (badge.Stats{}).Value(b.Requirement.Type); !ok {
			return nil, fmt.Errorf("badge %q: unknown requirement type %q", b.ID, b.Requirement.Type)
		}
		b.EarnedDate = nil
		c.badges = append(c.badges, b)
	}

	return c, nil
}

// Lookup returns the metadata for id and whether the catalog knows it.
func (c *Catalog) Lookup(id string) (activity.Metadata, bool) {
	i, ok := c.index[id]
	if !ok {
		return activity.Metadata{}, false
	}
	return c.exercises[i], true
}

// Position is the declaration index of id, or -1.
func (c *Catalog) Position(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

func (c *Catalog) Len() int {
	return len(c.exercises)
}

func (c *Catalog) Exercises() []activity.Metadata {
	return append([]activity.Metadata(nil), c.exercises...)
}

func (c *Catalog) ColdStart() []string {
	return append([]string(nil), c.coldStart...)
}

// Badges returns a fresh, unearned copy of the badge table.
func (c *Catalog) Badges() []badge.Badge {
	return append([]badge.Badge(nil), c.badges...)
}
