package loader

// DefaultLevel is the recommended obfuscation level.
const DefaultLevel = "maximum"

type Level struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var levels = []Level{
	{ID: "minimum", Name: "Minimum", Description: "Basic protection for speed"},
	{ID: "standard", Name: "Standard", Description: "Balanced protection and performance"},
	{ID: "maximum", Name: "Maximum", Description: "Maximum security (recommended)"},
	{ID: "extreme", Name: "Extreme", Description: "Highest security, slower execution"},
}

func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

func LevelByID(id string) (Level, bool) {
	for _, l := range levels {
		if l.ID == id {
			return l, true
		}
	}
	return Level{}, false
}
