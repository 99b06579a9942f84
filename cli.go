package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"markestedt/alpa/command"
	"markestedt/alpa/config"
	"markestedt/alpa/popup"
	"markestedt/alpa/search"
	"markestedt/alpa/storage"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "alpa",
		Short:         "Type text generated by a language model into any application",
		Long:          "alpa watches for configured key chords, asks a language model for text and types the result into the focused window.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(os.Stdout, opts.logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is <user config dir>/alpa/config.toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(
		newPromptCmd(),
		newCommandsCmd(opts),
		newHistoryCmd(opts),
	)

	return root
}

// execute runs root and reports a failure on its error writer, since
// cobra's own error output is silenced.
func execute(root *cobra.Command) error {
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if path == "" {
		path, _ = config.ConfigPath()
	}
	slog.Debug("Configuration loaded", "path", path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func runAgent(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return err
	}

	agent, err := NewAgent(cfg)
	if err != nil {
		slog.Error("Failed to create agent", "error", err)
		return err
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := agent.Run(ctx); err != nil {
		slog.Error("Agent error", "error", err)
		return err
	}

	slog.Info("alpa stopped")
	return nil
}

// newPromptCmd is the child side of the prompt popup. stdout carries only
// the entered text.
func newPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "prompt <json>",
		Short:  "Show the single-line prompt popup",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(os.Stderr, "warn")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			popupArgs, err := popup.ParseArgs(args[0])
			if err != nil {
				return err
			}
			return popup.Run(popupArgs, cmd.OutOrStdout())
		},
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func commandRow(c command.Command) []string {
	row := []string{c.Name, c.Keys.String(), c.Action.String(), "", "", ""}
	if c.Action == command.ActionGenerate {
		input := c.Generate.Input.Kind.String()
		if load := c.Generate.Input.Load.String(); load != "" {
			input += " (" + load + ")"
		}
		row[3] = input
		row[4] = c.Generate.Mode.Kind.String()
		row[5] = c.Generate.Newline.String()
	}
	return row
}

// filterCommands keeps the commands matching query, best match first
func filterCommands(cmds []command.Command, query string) []command.Command {
	if strings.TrimSpace(query) == "" {
		return cmds
	}

	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}

	var out []command.Command
	for _, r := range search.Rank(names, query) {
		out = append(out, cmds[r.Index])
	}
	return out
}

func newCommandsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commands [query]",
		Short: "List configured commands, optionally filtered by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			cmds, err := cfg.ParseCommands()
			if err != nil {
				return err
			}

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			matched := filterCommands(cmds, query)
			if len(matched) == 0 {
				return fmt.Errorf("no command matches %q", query)
			}

			rows := make([][]string, 0, len(matched))
			for _, c := range matched {
				rows = append(rows, commandRow(c))
			}
			renderTable(cmd.OutOrStdout(), []string{"Name", "Keys", "Action", "Input", "Mode", "Newline"}, rows)
			return nil
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			db, err := storage.Open(dir)
			if err != nil {
				return err
			}
			defer db.Close()

			generations, err := db.GetGenerations(limit, 0)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(generations))
			for _, g := range generations {
				rows = append(rows, historyRow(g))
			}
			renderTable(cmd.OutOrStdout(), []string{"When", "Outcome", "Engine", "Prompt", "Output"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of generations to show")
	return cmd
}

func historyRow(g storage.Generation) []string {
	outcome := g.Outcome
	if g.ErrorMessage != "" {
		outcome += ": " + g.ErrorMessage
	}
	return []string{
		g.Timestamp.Local().Format("2006-01-02 15:04"),
		outcome,
		g.Engine,
		truncate(g.Prompt, 40),
		truncate(g.Output, 60),
	}
}

// truncate shortens s to n runes on a single line
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
