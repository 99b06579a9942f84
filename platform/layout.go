package platform

import (
	"strings"

	"markestedt/alpa/keys"
)

// Stroke is one key press needed to produce a character
type Stroke struct {
	Key   keys.Keycode
	Shift bool
}

// usLayout maps printable runes to strokes on a US keyboard, for injectors
// that can only press physical keys
var usLayout = map[rune]Stroke{
	' ':  {Key: keys.Space},
	'\t': {Key: keys.Tab},
	'-':  {Key: keys.Minus},
	'_':  {Key: keys.Minus, Shift: true},
	'=':  {Key: keys.Equal},
	'+':  {Key: keys.Equal, Shift: true},
	'[':  {Key: keys.LeftBracket},
	'{':  {Key: keys.LeftBracket, Shift: true},
	']':  {Key: keys.RightBracket},
	'}':  {Key: keys.RightBracket, Shift: true},
	'\\': {Key: keys.BackSlash},
	'|':  {Key: keys.BackSlash, Shift: true},
	';':  {Key: keys.Semicolon},
	':':  {Key: keys.Semicolon, Shift: true},
	'\'': {Key: keys.Apostrophe},
	'"':  {Key: keys.Apostrophe, Shift: true},
	',':  {Key: keys.Comma},
	'<':  {Key: keys.Comma, Shift: true},
	'.':  {Key: keys.Dot},
	'>':  {Key: keys.Dot, Shift: true},
	'/':  {Key: keys.Slash},
	'?':  {Key: keys.Slash, Shift: true},
	'`':  {Key: keys.Grave},
	'~':  {Key: keys.Grave, Shift: true},
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		k := keys.Keycode(strings.ToUpper(string(c)))
		usLayout[c] = Stroke{Key: k}
		usLayout[c-'a'+'A'] = Stroke{Key: k, Shift: true}
	}
	for d := '0'; d <= '9'; d++ {
		usLayout[d] = Stroke{Key: keys.Keycode("Key" + string(d))}
	}
	for i, r := range ")!@#$%^&*(" {
		usLayout[r] = Stroke{Key: keys.Keycode("Key" + string(rune('0'+i))), Shift: true}
	}
}

// StrokeFor returns the US layout stroke producing r
func StrokeFor(r rune) (Stroke, bool) {
	s, ok := usLayout[r]
	return s, ok
}

// hookKeyNames maps key names reported by the global hook to keycodes
// where keys.Parse doesn't already know them
var hookKeyNames = map[string]keys.Keycode{
	"lctrl":   keys.LControl,
	"rctrl":   keys.RControl,
	"lshift":  keys.LShift,
	"rshift":  keys.RShift,
	"lalt":    keys.LAlt,
	"ralt":    keys.RAlt,
	"lcmd":    keys.LMeta,
	"rcmd":    keys.RMeta,
	"lsuper":  keys.LMeta,
	"rsuper":  keys.RMeta,
	"escape":  keys.Escape,
	"esc":     keys.Escape,
	"return":  keys.Enter,
	"space":   keys.Space,
	"delete":  keys.Delete,
	"bksp":    keys.Backspace,
	"ctrl":    keys.LControl,
	"shift":   keys.LShift,
	"alt":     keys.LAlt,
	"cmd":     keys.LMeta,
	"command": keys.LMeta,
}

// hookKeycode resolves a hook key name, reporting false for keys the
// poller can't bind
func hookKeycode(name string) (keys.Keycode, bool) {
	n := strings.ToLower(name)
	if k, ok := hookKeyNames[n]; ok {
		return k, true
	}
	k, err := keys.Parse(n)
	if err != nil {
		return "", false
	}
	return k, true
}
