package physics

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CollisionGroup is a bit set of physical categories. A body's group says what
// it is, its mask says what it collides with.
type CollisionGroup uint32

const (
	GroupTerrain CollisionGroup = 1 << iota
	GroupPlayer
	GroupEnemy
	GroupProjectile
	GroupPickup

	GroupNone CollisionGroup = 0
	GroupAll  CollisionGroup = GroupTerrain | GroupPlayer | GroupEnemy | GroupProjectile | GroupPickup
)

var groupNames = []struct {
	group CollisionGroup
	name  string
}{
	{GroupTerrain, "terrain"},
	{GroupPlayer, "player"},
	{GroupEnemy, "enemy"},
	{GroupProjectile, "projectile"},
	{GroupPickup, "pickup"},
}

// Has reports whether any bit of other is set in g.
func (g CollisionGroup) Has(other CollisionGroup) bool {
	return g&other != 0
}

func (g CollisionGroup) String() string {
	if g == GroupNone {
		return "none"
	}
	var parts []string
	rest := g
	for _, n := range groupNames {
		if g&n.group != 0 {
			parts = append(parts, n.name)
			rest &^= n.group
		}
	}
	if rest != 0 {
		parts = append(parts, "0x"+strconv.FormatUint(uint64(rest), 16))
	}
	return strings.Join(parts, "|")
}

// CanCollide is the candidate test shared by the pairwise resolver and the
// player path.
func CanCollide(groupA, maskA, groupB, maskB CollisionGroup) bool {
	return groupA&maskB != 0 || groupB&maskA != 0
}

// ParseGroup parses "enemy|pickup" style names. "all" and "none" are accepted.
func ParseGroup(s string) (CollisionGroup, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return GroupNone, nil
	}
	var g CollisionGroup
	for _, part := range strings.Split(s, "|") {
		name := strings.ToLower(strings.TrimSpace(part))
		bit, err := lookupGroup(name)
		if err != nil {
			return GroupNone, err
		}
		g |= bit
	}
	return g, nil
}

func lookupGroup(name string) (CollisionGroup, error) {
	switch name {
	case "all":
		return GroupAll, nil
	case "none":
		return GroupNone, nil
	}
	for _, n := range groupNames {
		if n.name == name {
			return n.group, nil
		}
	}
	return GroupNone, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
}

// UnmarshalYAML accepts an integer bit set, a "|"-joined string, or a
// sequence of group names.
func (g *CollisionGroup) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if n, err := strconv.ParseUint(node.Value, 0, 32); err == nil {
			*g = CollisionGroup(n)
			return nil
		}
		parsed, err := ParseGroup(node.Value)
		if err != nil {
			return err
		}
		*g = parsed
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		var out CollisionGroup
		for _, name := range names {
			parsed, err := ParseGroup(name)
			if err != nil {
				return err
			}
			out |= parsed
		}
		*g = out
		return nil
	}
	return fmt.Errorf("physics: collision group must be a scalar or a sequence (line %d)", node.Line)
}

// MarshalYAML writes the name form so round-tripped files stay readable.
func (g CollisionGroup) MarshalYAML() (any, error) {
	return g.String(), nil
}
