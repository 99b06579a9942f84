package popup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"unicode/utf8"

	"markestedt/alpa/config"
	"markestedt/alpa/dispatch"
)

// Client shows the prompt popup by spawning this executable's hidden
// "prompt" command and reading back what the user typed
type Client struct {
	exe      string
	launcher []string
	args     Args
}

// NewClient creates a popup client for the running executable
func NewClient(window config.WindowConfig, style config.StyleConfig) (*Client, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}

	return &Client{
		exe:      exe,
		launcher: window.Launcher,
		args: Args{
			Width:  window.Width,
			Height: window.Height,
			Style:  style,
		},
	}, nil
}

// Ask blocks until the popup closes. It returns "" when the user dismissed it.
func (c *Client) Ask(ctx context.Context) (string, error) {
	var (
		out []byte
		err error
	)
	if len(c.launcher) > 0 {
		out, err = c.askInLauncher(ctx)
	} else {
		out, err = c.askDirect(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", dispatch.ErrPromptSurface, err)
	}

	return decodeOutput(out)
}

func (c *Client) askDirect(ctx context.Context) ([]byte, error) {
	arg, err := c.args.Encode()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.exe, "prompt", arg)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run popup: %w", err)
	}
	return out, nil
}

func (c *Client) askInLauncher(ctx context.Context) ([]byte, error) {
	f, err := os.CreateTemp("", "alpa-prompt-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create popup output file: %w", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	args := c.args
	args.Output = path
	arg, err := args.Encode()
	if err != nil {
		return nil, err
	}

	cmdArgs := append(append([]string{}, c.launcher[1:]...), c.exe, "prompt", arg)
	slog.Debug("Opening popup in launcher", "launcher", c.launcher[0])

	cmd := exec.CommandContext(ctx, c.launcher[0], cmdArgs...)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to run popup launcher: %w", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read popup output: %w", err)
	}
	return out, nil
}

// decodeOutput validates the child's output and strips the line terminator
func decodeOutput(out []byte) (string, error) {
	if !utf8.Valid(out) {
		return "", fmt.Errorf("%w: popup output is not valid UTF-8", dispatch.ErrPromptSurface)
	}

	out = bytes.TrimSuffix(out, []byte("\n"))
	out = bytes.TrimSuffix(out, []byte("\r"))
	return string(out), nil
}
