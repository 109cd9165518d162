package clustering

import "strconv"

var archetypeNames = map[int][]string{ //nolint:gochecknoglobals // static lookup
	2: {"Analytical", "Intuitive"},
	3: {"Analytical", "Balanced", "Intuitive"},
	4: {"Analytical", "Practical", "Creative", "Intuitive"},
	5: {"Analytical", "Practical", "Balanced", "Creative", "Intuitive"},
	6: {"Analytical", "Methodical", "Practical", "Creative", "Visionary", "Intuitive"},
	7: {"Analytical", "Methodical", "Practical", "Balanced", "Creative", "Visionary", "Intuitive"},
	8: {"Analytical", "Methodical", "Practical", "Systematic", "Balanced", "Creative", "Visionary", "Intuitive"},
}

var archetypeDescriptions = map[string]string{ //nolint:gochecknoglobals // static lookup
	"Analytical": "Individuals who prefer logical, systematic approaches to problem-solving with strong attention to detail.",
	"Practical":  "People who focus on concrete, actionable solutions and prefer hands-on approaches.",
	"Creative":   "Innovative thinkers who value originality and enjoy exploring new ideas and possibilities.",
	"Intuitive":  "Individuals who rely on instinct and pattern recognition, often seeing the big picture.",
	"Balanced":   "Well-rounded individuals who demonstrate moderate levels across multiple dimensions.",
	"Methodical": "Systematic individuals who prefer structured, step-by-step approaches to tasks.",
	"Visionary":  "Forward-thinking individuals who focus on future possibilities and strategic thinking.",
	"Systematic": "Individuals who prefer organized, methodical approaches with clear processes.",
}

const genericDescription = "Unique personality archetype with distinct characteristics."

// ArchetypeName names cluster index i of a k-cluster solution.
func ArchetypeName(i, k int) string {
	if names, ok := archetypeNames[k]; ok && i < len(names) {
		return names[i]
	}
	return "Archetype_" + strconv.Itoa(i+1)
}

// ArchetypeDescription returns the human-readable description of an archetype.
func ArchetypeDescription(name string) string {
	if d, ok := archetypeDescriptions[name]; ok {
		return d
	}
	return genericDescription
}
