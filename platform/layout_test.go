package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/alpa/keys"
)

func TestStrokeFor(t *testing.T) {
	tests := []struct {
		r    rune
		want Stroke
	}{
		{'a', Stroke{Key: "A"}},
		{'Z', Stroke{Key: "Z", Shift: true}},
		{'5', Stroke{Key: "Key5"}},
		{'%', Stroke{Key: "Key5", Shift: true}},
		{')', Stroke{Key: "Key0", Shift: true}},
		{'!', Stroke{Key: "Key1", Shift: true}},
		{' ', Stroke{Key: keys.Space}},
		{'{', Stroke{Key: keys.LeftBracket, Shift: true}},
		{'"', Stroke{Key: keys.Apostrophe, Shift: true}},
	}

	for _, tt := range tests {
		got, ok := StrokeFor(tt.r)
		require.True(t, ok, string(tt.r))
		assert.Equal(t, tt.want, got, string(tt.r))
	}

	_, ok := StrokeFor('é')
	assert.False(t, ok)
}

func TestHookKeycode(t *testing.T) {
	for name, want := range map[string]keys.Keycode{
		"lctrl":  keys.LControl,
		"rshift": keys.RShift,
		"esc":    keys.Escape,
		"a":      "A",
		"F5":     "F5",
		"lcmd":   keys.LMeta,
	} {
		got, ok := hookKeycode(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := hookKeycode("numlock")
	assert.False(t, ok)
}

func TestEveryLayoutKeyIsKnown(t *testing.T) {
	known := keys.NewSet(keys.All...)
	for r, s := range usLayout {
		assert.True(t, known.Contains(s.Key), "rune %q maps to unknown key %s", r, s.Key)
	}
}
