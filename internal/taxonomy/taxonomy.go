package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Taxonomy is the closed vocabulary the analyzer may assign from.
// It is read-only after Load; anything outside it is a validation
// failure, never a new label.
type Taxonomy struct {
	Version    string     `yaml:"version"`
	Categories []Category `yaml:"categories"`
	// Severities is ordered ascending; position is the severity rank.
	Severities []string `yaml:"severities"`
	// SeverityFloor maps a tag to the minimum severity its presence implies.
	SeverityFloor map[string]string `yaml:"severity_floor"`
}

type Category struct {
	Slug  string   `yaml:"slug"`
	Name  string   `yaml:"name"`
	Tags  []string `yaml:"tags"`
	Route Route    `yaml:"route"`
}

// Route is the deterministic routing suggestion for a category.
type Route struct {
	Department     string `yaml:"department" json:"department"`
	ContactEmail   string `yaml:"contact_email" json:"contact_email"`
	ContactPhone   string `yaml:"contact_phone" json:"contact_phone"`
	EmergencyPhone string `yaml:"emergency_phone" json:"emergency_phone"`
	ResponseWindow string `yaml:"response_window" json:"response_window"`
}

// Load reads a taxonomy override file, or returns the compiled-in
// default when path is empty.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	return &t, nil
}

func (t *Taxonomy) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("missing version")
	}
	if len(t.Categories) == 0 {
		return fmt.Errorf("no categories")
	}
	if len(t.Severities) == 0 {
		return fmt.Errorf("no severities")
	}
	seenCat := make(map[string]bool, len(t.Categories))
	seenTag := make(map[string]bool)
	for _, c := range t.Categories {
		if c.Slug == "" {
			return fmt.Errorf("category with empty slug")
		}
		if seenCat[c.Slug] {
			return fmt.Errorf("duplicate category %q", c.Slug)
		}
		seenCat[c.Slug] = true
		for _, tag := range c.Tags {
			if seenTag[tag] {
				return fmt.Errorf("tag %q appears in more than one category", tag)
			}
			seenTag[tag] = true
		}
	}
	seenSev := make(map[string]bool, len(t.Severities))
	for _, s := range t.Severities {
		if seenSev[s] {
			return fmt.Errorf("duplicate severity %q", s)
		}
		seenSev[s] = true
	}
	for tag, sev := range t.SeverityFloor {
		if !seenTag[tag] {
			return fmt.Errorf("severity floor references unknown tag %q", tag)
		}
		if !seenSev[sev] {
			return fmt.Errorf("severity floor for %q references unknown severity %q", tag, sev)
		}
	}
	return nil
}

func (t *Taxonomy) HasCategory(slug string) bool {
	for _, c := range t.Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

func (t *Taxonomy) CategoryBySlug(slug string) (Category, bool) {
	for _, c := range t.Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

func (t *Taxonomy) HasSeverity(s string) bool {
	return t.SeverityRank(s) >= 0
}

// SeverityRank returns the position of s in the ordered severity list,
// or -1 when s is not a member.
func (t *Taxonomy) SeverityRank(s string) int {
	for i, v := range t.Severities {
		if v == s {
			return i
		}
	}
	return -1
}

// HasTag reports whether tag belongs to the category identified by slug.
func (t *Taxonomy) HasTag(slug, tag string) bool {
	c, ok := t.CategoryBySlug(slug)
	if !ok {
		return false
	}
	for _, v := range c.Tags {
		if v == tag {
			return true
		}
	}
	return false
}

// RouteFor returns the routing suggestion for a category slug.
func (t *Taxonomy) RouteFor(slug string) (Route, bool) {
	c, ok := t.CategoryBySlug(slug)
	if !ok {
		return Route{}, false
	}
	return c.Route, true
}

// FloorSeverity raises sev to the highest floor implied by tags.
// The model's judgment is kept when it is already at or above the floor;
// it is never lowered.
func (t *Taxonomy) FloorSeverity(sev string, tags []string) string {
	rank := t.SeverityRank(sev)
	for _, tag := range tags {
		floor, ok := t.SeverityFloor[tag]
		if !ok {
			continue
		}
		if fr := t.SeverityRank(floor); fr > rank {
			rank = fr
			sev = floor
		}
	}
	return sev
}

// CategorySlugs returns the slugs in declaration order.
func (t *Taxonomy) CategorySlugs() []string {
	out := make([]string, 0, len(t.Categories))
	for _, c := range t.Categories {
		out = append(out, c.Slug)
	}
	return out
}

func (t *Taxonomy) String() string {
	return "taxonomy " + t.Version + " (" + strings.Join(t.CategorySlugs(), ", ") + ")"
}
