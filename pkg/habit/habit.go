package habit

import (
	"strings"

	"github.com/google/uuid"
)

// Kind classifies a habit as something to build up or something to cut out.
type Kind string

const (
	KindHealth Kind = "health"
	KindVice   Kind = "vice"
)

// ViceSigil marks a habit name as a vice ("~Smoking"). The Kind field is
// canonical; the sigil is only produced and consumed at format boundaries
// (CSV, remote grid, share tokens).
const ViceSigil = "~"

// DefaultXP is the XP magnitude assigned when none is known.
const DefaultXP = 15

// Habit is a user-defined trackable activity. XP is signed: positive for
// health habits, non-positive for vices.
type Habit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"type"`
	XP   int    `json:"xp"`
}

// LogMap is a sparse map of log keys (see LogKey) to completion flags.
// Absent keys mean "not completed"; false is never required to be stored.
type LogMap map[string]bool

// Settings holds the user-tunable knobs and the sync credentials.
type Settings struct {
	APIKey      string
	ClientID    string
	ResourceID  string
	SyncEnabled bool
	MonthlyGoal int
}

// IsViceName reports whether a raw name carries the vice sigil.
func IsViceName(name string) bool {
	return strings.HasPrefix(name, ViceSigil)
}

// DisplayName strips the vice sigil for presentation.
func DisplayName(name string) string {
	return strings.TrimPrefix(name, ViceSigil)
}

// NormalizeName lowercases and trims a name with the sigil removed, for
// loose comparisons.
func NormalizeName(raw string) string {
	bare := strings.TrimPrefix(strings.TrimSpace(raw), ViceSigil)
	return strings.ToLower(strings.TrimSpace(bare))
}

// SigilName renders the canonical on-disk name for a habit: vices carry the
// sigil, health habits never do.
func (h Habit) SigilName() string {
	bare := DisplayName(h.Name)
	if h.Kind == KindVice {
		return ViceSigil + bare
	}
	return bare
}

// IsVice reports the canonical polarity.
func (h Habit) IsVice() bool {
	return h.Kind == KindVice
}

// New mints a habit from a raw name. The sigil decides polarity and the
// default XP sign; ids are fresh uuids.
func New(name string) Habit {
	h := Habit{
		ID:   uuid.NewString(),
		Name: strings.TrimSpace(name),
		Kind: KindHealth,
		XP:   DefaultXP,
	}
	if IsViceName(h.Name) {
		h.Kind = KindVice
		h.XP = -DefaultXP
	}
	return h
}

// NormalizeKind forces Kind and the XP sign into agreement, preferring an
// explicit vice marker (either the stored kind or the name sigil). The XP
// magnitude is preserved; zero or missing XP falls back to DefaultXP.
func NormalizeKind(h Habit) Habit {
	return ForceKind(h, h.Kind == KindVice || IsViceName(h.Name))
}

// ForceKind sets polarity explicitly, flipping the XP sign as needed while
// preserving its magnitude (DefaultXP when zero). Used where the name sigil
// is authoritative, e.g. CSV import.
func ForceKind(h Habit, vice bool) Habit {
	mag := h.XP
	if mag < 0 {
		mag = -mag
	}
	if mag == 0 {
		mag = DefaultXP
	}
	if vice {
		h.Kind = KindVice
		h.XP = -mag
	} else {
		h.Kind = KindHealth
		h.XP = mag
	}
	return h
}

// FindByName returns the first habit whose name matches exactly, or nil.
func FindByName(habits []Habit, name string) *Habit {
	for i := range habits {
		if habits[i].Name == name {
			return &habits[i]
		}
	}
	return nil
}

// DefaultHabits is the starter template seeded on first run.
func DefaultHabits() []Habit {
	return []Habit{
		{ID: "1", Name: "Exercise", Kind: KindHealth, XP: DefaultXP},
		{ID: "2", Name: "Drink Water", Kind: KindHealth, XP: DefaultXP},
	}
}
