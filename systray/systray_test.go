package systray

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIcon(t *testing.T) {
	assert.True(t, bytes.HasPrefix(Icon("linux"), []byte("\x89PNG")))
	assert.True(t, bytes.HasPrefix(Icon("windows"), []byte{0, 0, 1, 0}))
}

func TestBrowserCommand(t *testing.T) {
	url := "http://localhost:7373"

	cmd := browserCommand("darwin", url)
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"open", url}, cmd.Args)

	cmd = browserCommand("windows", url)
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"cmd", "/c", "start", url}, cmd.Args)

	cmd = browserCommand("linux", url)
	require.NotNil(t, cmd)
	assert.Equal(t, "xdg-open", cmd.Args[0])

	assert.Nil(t, browserCommand("plan9", url))
}

func TestSetGeneratingBeforeReady(t *testing.T) {
	m := NewSystrayManager("", nil)
	assert.NotPanics(t, func() { m.SetGenerating(true) })
}
