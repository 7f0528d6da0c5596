// Package levels resolves XP totals against the static level catalog.
package levels

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrLevelNotFound is returned when a level number is not in the catalog.
// Callers treat it as "no further level", not a crash.
var ErrLevelNotFound = errors.New("level not found in catalog")

// Definition is one immutable catalog entry. Level numbers are sequential
// starting at 1; XPRequired is the cumulative threshold to hold the level.
type Definition struct {
	Level            int    `yaml:"level" json:"level"`
	XPRequired       int64  `yaml:"xp_required" json:"xp_required"`
	Title            string `yaml:"title" json:"title"`
	BadgeName        string `yaml:"badge_name" json:"badge_name"`
	BadgeDescription string `yaml:"badge_description" json:"badge_description"`
}

// Catalog is the loaded, validated level table. Read-only after construction.
type Catalog struct {
	defs []Definition
}

// Load reads the catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level catalog: %w", err)
	}

	var defs []Definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse level catalog: %w", err)
	}

	return New(defs)
}

// New validates the definitions and builds a catalog.
func New(defs []Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("level catalog is empty")
	}

	for i, def := range defs {
		if def.Level != i+1 {
			return nil, fmt.Errorf("level catalog must be sequential from 1: entry %d has level %d", i, def.Level)
		}
		if i == 0 {
			if def.XPRequired != 0 {
				return nil, fmt.Errorf("level 1 threshold must be 0, got %d", def.XPRequired)
			}
			continue
		}
		if def.XPRequired <= defs[i-1].XPRequired {
			return nil, fmt.Errorf("level %d threshold %d is not above level %d threshold %d",
				def.Level, def.XPRequired, defs[i-1].Level, defs[i-1].XPRequired)
		}
	}

	return &Catalog{defs: defs}, nil
}

// LevelForXP returns the highest level whose threshold is <= xp. XP beyond
// the last threshold resolves to the max level.
func (c *Catalog) LevelForXP(xp int64) int {
	level := 1
	for _, def := range c.defs {
		if xp >= def.XPRequired {
			level = def.Level
		} else {
			break
		}
	}
	return level
}

// ThresholdForLevel returns the XP required to hold the given level.
func (c *Catalog) ThresholdForLevel(level int) (int64, error) {
	if level < 1 || level > len(c.defs) {
		return 0, fmt.Errorf("level %d: %w", level, ErrLevelNotFound)
	}
	return c.defs[level-1].XPRequired, nil
}

// NextThreshold returns the threshold of level+1, or false when the given
// level is the last one defined.
func (c *Catalog) NextThreshold(level int) (int64, bool) {
	if level < 1 || level >= len(c.defs) {
		return 0, false
	}
	return c.defs[level].XPRequired, true
}

// Definition returns the catalog entry for a level.
func (c *Catalog) Definition(level int) (Definition, error) {
	if level < 1 || level > len(c.defs) {
		return Definition{}, fmt.Errorf("level %d: %w", level, ErrLevelNotFound)
	}
	return c.defs[level-1], nil
}

// Definitions returns all entries in ascending level order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// MaxLevel returns the highest defined level number.
func (c *Catalog) MaxLevel() int {
	return len(c.defs)
}

// Progress returns the fraction of the way from the current level's
// threshold to the next one, in [0, 1]. At max level it is always 1.
func (c *Catalog) Progress(xp int64) float64 {
	level := c.LevelForXP(xp)
	next, ok := c.NextThreshold(level)
	if !ok {
		return 1.0
	}
	current := c.defs[level-1].XPRequired
	if next == current {
		return 1.0
	}
	p := float64(xp-current) / float64(next-current)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
