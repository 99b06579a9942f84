package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"markestedt/alpa/command"
	"markestedt/alpa/keys"
)

type Config struct {
	Window   WindowConfig    `toml:"window"`
	Style    StyleConfig     `toml:"style"`
	Model    ModelConfig     `toml:"model"`
	Poller   PollerConfig    `toml:"poller"`
	Web      WebConfig       `toml:"web"`
	Tray     TrayConfig      `toml:"tray"`
	History  HistoryConfig   `toml:"history"`
	Commands []CommandConfig `toml:"commands"`
}

// WindowConfig sizes the single-line prompt popup. Launcher, when set, is a
// terminal command the popup is run in, e.g. ["alacritty", "-e"].
type WindowConfig struct {
	Width    int      `toml:"width"`
	Height   int      `toml:"height"`
	Launcher []string `toml:"launcher,omitempty"`
}

// StyleConfig holds optional popup colors as "#rrggbb" strings
type StyleConfig struct {
	Font            string `toml:"font,omitempty" json:"font,omitempty"`
	BgColor         string `toml:"bg_color,omitempty" json:"bg_color,omitempty"`
	InputBgColor    string `toml:"input_bg_color,omitempty" json:"input_bg_color,omitempty"`
	HoveredBgColor  string `toml:"hovered_bg_color,omitempty" json:"hovered_bg_color,omitempty"`
	SelectedBgColor string `toml:"selected_bg_color,omitempty" json:"selected_bg_color,omitempty"`
	TextColor       string `toml:"text_color,omitempty" json:"text_color,omitempty"`
	StrokeColor     string `toml:"stroke_color,omitempty" json:"stroke_color,omitempty"`
}

type ModelConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	Host        string  `toml:"host"`
	BaseURL     string  `toml:"base_url"`
	APIKey      string  `toml:"api_key"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	Raw         bool    `toml:"raw"`
}

type PollerConfig struct {
	IntervalMs int `toml:"interval_ms"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

type TrayConfig struct {
	Enabled bool `toml:"enabled"`
}

type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
}

// CommandConfig is the on-disk form of a command
type CommandConfig struct {
	Name          string   `toml:"name"`
	Keys          []string `toml:"keys"`
	Action        string   `toml:"action"`
	Input         string   `toml:"input,omitempty"`
	ClipboardLoad string   `toml:"clipboard_load,omitempty"`
	Mode          string   `toml:"mode,omitempty"`
	Template      string   `toml:"template,omitempty"`
	Newline       string   `toml:"newline,omitempty"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  640,
			Height: 32,
		},
		Model: ModelConfig{
			Provider:  "ollama",
			Model:     "llama3.2",
			MaxTokens: 256,
			Raw:       true,
		},
		Poller: PollerConfig{
			IntervalMs: 10,
		},
		Web: WebConfig{
			Enabled: true,
			Port:    7373,
		},
		Tray: TrayConfig{
			Enabled: true,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Commands: []CommandConfig{
			{
				Name:    "autocomplete",
				Keys:    []string{"LAlt", "Backspace"},
				Action:  "generate",
				Input:   "single-line-ui",
				Mode:    "autocomplete",
				Newline: "enter",
			},
			{
				Name:          "ask-clipboard",
				Keys:          []string{"LAlt", "LShift", "Backspace"},
				Action:        "generate",
				Input:         "clipboard",
				ClipboardLoad: defaultClipboardLoad(runtime.GOOS),
				Mode:          "prompt",
				Template:      "Below is an instruction. Write a response that completes the request.\n\n### Instruction:\n{{PROMPT}}\n\n### Response:\n",
				Newline:       "shift-enter",
			},
			{
				Name:   "cancel",
				Keys:   []string{"LAlt", "Escape"},
				Action: "cancel",
			},
		},
	}
}

// Dir returns the configuration directory, creating it if needed
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}

	configDir := filepath.Join(base, "alpa")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// defaultClipboardLoad selects the current line before reading the
// clipboard where that is supported. Elsewhere the clipboard is read as is.
func defaultClipboardLoad(goos string) string {
	if goos == "darwin" {
		return "line"
	}
	return ""
}

// Load loads the configuration from the TOML file at path, or from
// ConfigPath when path is empty.
// If the file doesn't exist, it creates it with default values
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
	}

	// If config doesn't exist, create it with defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	// Load existing config
	cfg := defaultConfig()
	cfg.Commands = nil
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	restoreDefaultCommands(cfg, meta)

	return cfg, nil
}

// Decode parses TOML text over the defaults
func Decode(data string) (*Config, error) {
	cfg := defaultConfig()
	cfg.Commands = nil
	meta, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	restoreDefaultCommands(cfg, meta)
	return cfg, nil
}

// restoreDefaultCommands puts the starter commands back when the file
// declares none. Commands are decoded into an empty slice so default
// entries never leak fields into user-defined ones.
func restoreDefaultCommands(cfg *Config, meta toml.MetaData) {
	if !meta.IsDefined("commands") {
		cfg.Commands = defaultConfig().Commands
	}
}

// save writes the configuration to the TOML file
func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Save writes the configuration back to path
func (c *Config) Save(path string) error {
	return save(path, c)
}

// Validate checks settings that can't be defaulted
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "ollama":
	case "openai":
		if c.Model.APIKey == "" && c.Model.BaseURL == "" {
			return fmt.Errorf("openai provider needs 'api_key' or a 'base_url' in [model]")
		}
	default:
		return fmt.Errorf("unknown provider: %s", c.Model.Provider)
	}

	if c.Model.Model == "" {
		return fmt.Errorf("no model configured in [model]")
	}
	if c.Poller.IntervalMs <= 0 {
		return fmt.Errorf("poller interval_ms must be positive")
	}

	_, err := c.ParseCommands()
	return err
}

// ParseCommands converts the configured commands, preserving their order
func (c *Config) ParseCommands() ([]command.Command, error) {
	cmds := make([]command.Command, 0, len(c.Commands))
	for i, cc := range c.Commands {
		cmd, err := cc.Parse()
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i+1, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Parse converts a single command entry
func (cc CommandConfig) Parse() (command.Command, error) {
	name := cc.Name
	if name == "" {
		name = strings.Join(cc.Keys, "+")
	}

	chord, err := keys.ParseSet(cc.Keys)
	if err != nil {
		return command.Command{}, fmt.Errorf("%s: %w", name, err)
	}

	switch strings.ToLower(cc.Action) {
	case "cancel":
		return command.New(name, chord, command.ActionCancel, command.GenerateSpec{})
	case "generate", "":
	default:
		return command.Command{}, fmt.Errorf("%s: unknown action: %s", name, cc.Action)
	}

	var spec command.GenerateSpec

	switch strings.ToLower(cc.Input) {
	case "single-line-ui", "":
		spec.Input.Kind = command.InputSingleLineUI
	case "clipboard":
		spec.Input.Kind = command.InputClipboard
		switch strings.ToLower(cc.ClipboardLoad) {
		case "":
		case "line":
			spec.Input.Load = command.LoadLine
		default:
			return command.Command{}, fmt.Errorf("%s: unknown clipboard_load: %s", name, cc.ClipboardLoad)
		}
	default:
		return command.Command{}, fmt.Errorf("%s: unknown input: %s", name, cc.Input)
	}

	switch strings.ToLower(cc.Mode) {
	case "autocomplete", "":
		spec.Mode.Kind = command.ModeAutocomplete
	case "prompt":
		spec.Mode = command.PromptMode{Kind: command.ModePrompt, Template: cc.Template}
	default:
		return command.Command{}, fmt.Errorf("%s: unknown mode: %s", name, cc.Mode)
	}

	newline := cc.Newline
	if newline == "" {
		newline = "stop"
	}
	spec.Newline, err = command.ParseNewline(newline)
	if err != nil {
		return command.Command{}, fmt.Errorf("%s: %w", name, err)
	}

	return command.New(name, chord, command.ActionGenerate, spec)
}
