package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want Keycode
	}{
		{"LAlt", LAlt},
		{"lalt", LAlt},
		{"alt", LAlt},
		{"ctrl", LControl},
		{"Esc", Escape},
		{"backspace", Backspace},
		{"a", Keycode("A")},
		{"7", Keycode("Key7")},
		{"key7", Keycode("Key7")},
		{"f11", Keycode("F11")},
		{"cmd", LMeta},
		{" Enter ", Enter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	_, err := Parse("hyper")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestParseSet(t *testing.T) {
	s, err := ParseSet([]string{"LAlt", "alt", "Backspace"})
	require.NoError(t, err)
	assert.Len(t, s, 2)
	assert.True(t, s.Contains(LAlt))
	assert.True(t, s.Contains(Backspace))

	_, err = ParseSet([]string{"LAlt", "nope"})
	assert.Error(t, err)
}

func TestSetIsSuperset(t *testing.T) {
	pressed := NewSet(LAlt, Backspace, Keycode("A"))

	assert.True(t, pressed.IsSuperset(NewSet(LAlt, Backspace)))
	assert.True(t, pressed.IsSuperset(NewSet()))
	assert.False(t, pressed.IsSuperset(NewSet(LAlt, LShift)))
	assert.False(t, NewSet().IsSuperset(NewSet(LAlt)))
}

func TestSetString(t *testing.T) {
	assert.Equal(t, "Backspace+LAlt", NewSet(LAlt, Backspace).String())
	assert.Equal(t, "", NewSet().String())
}

func TestSetClone(t *testing.T) {
	s := NewSet(LAlt)
	c := s.Clone()
	c.Add(Enter)
	c.Remove(LAlt)

	assert.True(t, s.Contains(LAlt))
	assert.False(t, s.Contains(Enter))
}
