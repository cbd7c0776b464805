package ai

import "strings"

// Flag is a capability a behavior claims: exclusive access to one shared actuator.
type Flag uint8

const (
	FlagMove Flag = 1 << iota
	FlagLook
	FlagJump
	FlagTarget
)

// FlagsNone is the empty set.
const FlagsNone Flag = 0

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagMove, "MOVE"},
	{FlagLook, "LOOK"},
	{FlagJump, "JUMP"},
	{FlagTarget, "TARGET"},
}

// AllFlags lists the single flags in declaration order.
func AllFlags() []Flag {
	out := make([]Flag, len(flagNames))
	for i, f := range flagNames {
		out[i] = f.flag
	}
	return out
}

// Has reports whether every flag of other is set in f.
func (f Flag) Has(other Flag) bool {
	return f&other == other
}

// Overlaps reports whether f and other share at least one flag.
func (f Flag) Overlaps(other Flag) bool {
	return f&other != 0
}

func (f Flag) String() string {
	if f == FlagsNone {
		return "NONE"
	}
	var parts []string
	for _, n := range flagNames {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
