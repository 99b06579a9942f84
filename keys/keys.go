package keys

import (
	"fmt"
	"sort"
	"strings"
)

// Keycode is the platform-independent name of a physical key
type Keycode string

const (
	LShift   Keycode = "LShift"
	RShift   Keycode = "RShift"
	LControl Keycode = "LControl"
	RControl Keycode = "RControl"
	LAlt     Keycode = "LAlt"
	RAlt     Keycode = "RAlt"
	LMeta    Keycode = "LMeta"
	RMeta    Keycode = "RMeta"

	Escape    Keycode = "Escape"
	Enter     Keycode = "Enter"
	Space     Keycode = "Space"
	Backspace Keycode = "Backspace"
	Tab       Keycode = "Tab"
	Delete    Keycode = "Delete"
	Up        Keycode = "Up"
	Down      Keycode = "Down"
	Left      Keycode = "Left"
	Right     Keycode = "Right"

	Minus        Keycode = "Minus"
	Equal        Keycode = "Equal"
	LeftBracket  Keycode = "LeftBracket"
	RightBracket Keycode = "RightBracket"
	BackSlash    Keycode = "BackSlash"
	Semicolon    Keycode = "Semicolon"
	Apostrophe   Keycode = "Apostrophe"
	Comma        Keycode = "Comma"
	Dot          Keycode = "Dot"
	Slash        Keycode = "Slash"
	Grave        Keycode = "Grave"

	C Keycode = "C"
)

// All lists every known keycode
var All []Keycode

var byLowerName = map[string]Keycode{}

var aliases = map[string]Keycode{
	"shift":     LShift,
	"lshift":    LShift,
	"rshift":    RShift,
	"ctrl":      LControl,
	"control":   LControl,
	"lctrl":     LControl,
	"rctrl":     RControl,
	"alt":       LAlt,
	"lalt":      LAlt,
	"ralt":      RAlt,
	"altgr":     RAlt,
	"option":    LAlt,
	"meta":      LMeta,
	"cmd":       LMeta,
	"command":   LMeta,
	"lcmd":      LMeta,
	"rcmd":      RMeta,
	"super":     LMeta,
	"win":       LMeta,
	"windows":   LMeta,
	"esc":       Escape,
	"return":    Enter,
	"enter":     Enter,
	"back":      Backspace,
	"del":       Delete,
	"-":         Minus,
	"=":         Equal,
	"[":         LeftBracket,
	"]":         RightBracket,
	"\\":        BackSlash,
	";":         Semicolon,
	"'":         Apostrophe,
	",":         Comma,
	".":         Dot,
	"/":         Slash,
	"`":         Grave,
	"backslash": BackSlash,
}

func init() {
	named := []Keycode{
		LShift, RShift, LControl, RControl, LAlt, RAlt, LMeta, RMeta,
		Escape, Enter, Space, Backspace, Tab, Delete, Up, Down, Left, Right,
		Minus, Equal, LeftBracket, RightBracket, BackSlash, Semicolon,
		Apostrophe, Comma, Dot, Slash, Grave,
	}
	for c := 'A'; c <= 'Z'; c++ {
		named = append(named, Keycode(string(c)))
	}
	for d := '0'; d <= '9'; d++ {
		named = append(named, Keycode("Key"+string(d)))
	}
	for i := 1; i <= 12; i++ {
		named = append(named, Keycode(fmt.Sprintf("F%d", i)))
	}

	All = named
	for _, k := range named {
		byLowerName[strings.ToLower(string(k))] = k
	}
}

// Parse resolves a key name (case-insensitive, aliases allowed) to a Keycode
func Parse(name string) (Keycode, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", fmt.Errorf("empty key name")
	}

	if k, ok := byLowerName[n]; ok {
		return k, nil
	}
	if k, ok := aliases[n]; ok {
		return k, nil
	}

	// Bare digits map to the number row
	if len(n) == 1 && n[0] >= '0' && n[0] <= '9' {
		return Keycode("Key" + n), nil
	}

	return "", fmt.Errorf("unknown key: %s", name)
}

// Set is a set of keycodes, used both for command chords and for the
// keys held down at one poll tick
type Set map[Keycode]struct{}

// NewSet builds a set from the given keys
func NewSet(ks ...Keycode) Set {
	s := make(Set, len(ks))
	for _, k := range ks {
		s[k] = struct{}{}
	}
	return s
}

// ParseSet parses a list of key names into a set
func ParseSet(names []string) (Set, error) {
	s := make(Set, len(names))
	for _, name := range names {
		k, err := Parse(name)
		if err != nil {
			return nil, err
		}
		s[k] = struct{}{}
	}
	return s, nil
}

func (s Set) Add(k Keycode) {
	s[k] = struct{}{}
}

func (s Set) Remove(k Keycode) {
	delete(s, k)
}

func (s Set) Contains(k Keycode) bool {
	_, ok := s[k]
	return ok
}

// IsSuperset reports whether every key of other is in s
func (s Set) IsSuperset(other Set) bool {
	for k := range other {
		if _, ok := s[k]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// Sorted returns the keys in lexical order
func (s Set) Sorted() []Keycode {
	out := make([]Keycode, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders the set as a "LAlt+Backspace" style chord
func (s Set) String() string {
	sorted := s.Sorted()
	parts := make([]string, len(sorted))
	for i, k := range sorted {
		parts[i] = string(k)
	}
	return strings.Join(parts, "+")
}
