package popup

import (
	"encoding/json"
	"fmt"

	"markestedt/alpa/config"
)

// Args is the JSON argument passed to the popup child process
type Args struct {
	Width  int                `json:"width"`
	Height int                `json:"height"`
	Style  config.StyleConfig `json:"style"`

	// Output, when set, receives the entered text instead of stdout. Used
	// when the child runs inside a terminal launcher that owns its stdout.
	Output string `json:"output,omitempty"`
}

// Encode returns the argument string for the child
func (a Args) Encode() (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("failed to encode popup args: %w", err)
	}
	return string(data), nil
}

// ParseArgs decodes the child's argument string
func ParseArgs(s string) (Args, error) {
	var a Args
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return Args{}, fmt.Errorf("failed to decode popup args: %w", err)
	}
	return a, nil
}
