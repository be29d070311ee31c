package platform

import (
	"fmt"
	"sort"
	"strings"
)

// Combo is a parsed key-chord. Key holds the Windows virtual key code of the
// non-modifier key, or 0 for a modifier-only chord.
type Combo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   int
	// KeyName is the canonical lowercase name of the non-modifier key.
	KeyName string
}

// String renders the combo in canonical "ctrl+alt+s" form.
func (c Combo) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	if c.Alt {
		parts = append(parts, "alt")
	}
	if c.Win {
		parts = append(parts, "win")
	}
	if c.KeyName != "" {
		parts = append(parts, c.KeyName)
	}
	return strings.Join(parts, "+")
}

// Virtual key codes for keys accepted in chord strings.
var vkCodes = map[string]int{
	"a": 0x41, "b": 0x42, "c": 0x43, "d": 0x44, "e": 0x45,
	"f": 0x46, "g": 0x47, "h": 0x48, "i": 0x49, "j": 0x4A,
	"k": 0x4B, "l": 0x4C, "m": 0x4D, "n": 0x4E, "o": 0x4F,
	"p": 0x50, "q": 0x51, "r": 0x52, "s": 0x53, "t": 0x54,
	"u": 0x55, "v": 0x56, "w": 0x57, "x": 0x58, "y": 0x59, "z": 0x5A,
	"0": 0x30, "1": 0x31, "2": 0x32, "3": 0x33, "4": 0x34,
	"5": 0x35, "6": 0x36, "7": 0x37, "8": 0x38, "9": 0x39,
	"f1": 0x70, "f2": 0x71, "f3": 0x72, "f4": 0x73,
	"f5": 0x74, "f6": 0x75, "f7": 0x76, "f8": 0x77,
	"f9": 0x78, "f10": 0x79, "f11": 0x7A, "f12": 0x7B,
	"space": 0x20, "enter": 0x0D, "esc": 0x1B,
	"tab": 0x09, "backspace": 0x08, "delete": 0x2E,
	"home": 0x24, "end": 0x23, "pageup": 0x21, "pagedown": 0x22,
}

// KnownKeys returns the key names accepted by ParseCombo, sorted.
func KnownKeys() []string {
	keys := make([]string, 0, len(vkCodes))
	for k := range vkCodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseCombo parses a chord string like "ctrl+alt+s" or "ctrl+win" into a
// Combo. A chord needs at least one modifier; the trailing key is optional
// (modifier-only chords are allowed). Unknown modifiers or keys are errors.
func ParseCombo(chord string) (Combo, error) {
	var c Combo

	chord = strings.TrimSpace(strings.ToLower(chord))
	if chord == "" {
		return c, fmt.Errorf("empty chord")
	}

	parts := strings.Split(chord, "+")
	for i, part := range parts {
		part = strings.TrimSpace(part)

		switch part {
		case "ctrl", "control":
			c.Ctrl = true
			continue
		case "shift":
			c.Shift = true
			continue
		case "alt":
			c.Alt = true
			continue
		case "win", "windows", "super":
			c.Win = true
			continue
		}

		// Not a modifier: only valid as the final part, and only if we
		// recognize the key name.
		if i != len(parts)-1 {
			return Combo{}, fmt.Errorf("unknown modifier %q in chord %q", part, chord)
		}
		code, ok := vkCodes[part]
		if !ok {
			return Combo{}, fmt.Errorf("unknown key %q in chord %q", part, chord)
		}
		c.Key = code
		c.KeyName = part
	}

	if !c.Ctrl && !c.Shift && !c.Alt && !c.Win {
		return Combo{}, fmt.Errorf("chord %q has no modifiers", chord)
	}

	return c, nil
}
