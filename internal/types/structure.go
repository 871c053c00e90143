package types

// Variant classifies the shape of an input directory tree.
type Variant string

const (
	// VariantTwoLevel is a flat layout: documents at the root plus at most
	// one level of section folders.
	VariantTwoLevel Variant = "two-level"
	// VariantThreeLevel is a nested layout: category folders containing
	// section subfolders containing documents.
	VariantThreeLevel Variant = "three-level"
	// VariantUnknown means no heuristic matched with enough confidence.
	VariantUnknown Variant = "unknown"
)

// ParseVariant converts a string to a Variant.
// Returns VariantUnknown if the string is not recognized.
func ParseVariant(s string) Variant {
	switch s {
	case "two-level":
		return VariantTwoLevel
	case "three-level":
		return VariantThreeLevel
	default:
		return VariantUnknown
	}
}

// FolderStructure is the classification result for an input tree.
// It governs how deep the collector recurses and how TOC headings are
// leveled; it never affects converter selection.
type FolderStructure struct {
	Variant    Variant
	Confidence float64        // 0.0-1.0
	Levels     map[int]int    // directory depth (1 = root child) -> heading level
	Evidence   map[string]any // scoring inputs, for diagnostics
	Issues     []string       // human-readable detection caveats
}

// LevelFor returns the TOC heading level for a directory at the given depth.
// Depths without a mapping fall back to level 1 (flat).
func (f FolderStructure) LevelFor(depth int) int {
	if lvl, ok := f.Levels[depth]; ok {
		return lvl
	}
	return 1
}

// MaxDepth returns the deepest directory depth the collector should recurse
// into, derived from the level mapping.
func (f FolderStructure) MaxDepth() int {
	max := 1
	for depth := range f.Levels {
		if depth > max {
			max = depth
		}
	}
	return max
}

// FlatLevels is the level mapping used when classification fails: every
// directory depth maps to heading level 1.
func FlatLevels() map[int]int {
	return map[int]int{1: 1}
}

// TwoLevelLevels maps root children to level 1.
func TwoLevelLevels() map[int]int {
	return map[int]int{1: 1}
}

// ThreeLevelLevels maps root children to level 1 and their subfolders to level 2.
func ThreeLevelLevels() map[int]int {
	return map[int]int{1: 1, 2: 2}
}
