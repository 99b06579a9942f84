package platform

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// SystemClipboard reads the OS clipboard
type SystemClipboard struct{}

// NewClipboard creates a new clipboard instance
func NewClipboard() Clipboard {
	return &SystemClipboard{}
}

// ReadText retrieves text from the clipboard
func (c *SystemClipboard) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("no clipboard utility available")
	}

	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}
