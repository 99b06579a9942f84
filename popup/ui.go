package popup

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// approximate pixels per terminal cell, for the configured window width
const cellWidth = 8

type model struct {
	input     textinput.Model
	frame     lipgloss.Style
	submitted bool
}

func newModel(args Args) model {
	cols := args.Width / cellWidth
	if cols < 20 {
		cols = 20
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Prompt"
	input.Width = cols - 6
	input.Focus()

	text := lipgloss.NewStyle()
	if c := args.Style.TextColor; c != "" {
		text = text.Foreground(lipgloss.Color(c))
		input.PromptStyle = input.PromptStyle.Foreground(lipgloss.Color(c))
	}
	if c := args.Style.InputBgColor; c != "" {
		text = text.Background(lipgloss.Color(c))
	}
	input.TextStyle = text
	if c := args.Style.SelectedBgColor; c != "" {
		input.Cursor.Style = lipgloss.NewStyle().Background(lipgloss.Color(c))
	}

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(cols - 2)
	if c := args.Style.StrokeColor; c != "" {
		frame = frame.BorderForeground(lipgloss.Color(c))
	}
	if c := args.Style.BgColor; c != "" {
		frame = frame.Background(lipgloss.Color(c)).BorderBackground(lipgloss.Color(c))
	}

	return model{input: input, frame: frame}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	return m.frame.Render(m.input.View())
}

// result is the text to report, "" when dismissed
func (m model) result() string {
	if !m.submitted {
		return ""
	}
	return m.input.Value()
}

// Run shows the popup and reports the entered text on stdout, or in
// args.Output when set. Nothing is written when the popup is dismissed.
// The UI is drawn on stderr so stdout only carries the result.
func Run(args Args, stdout io.Writer) error {
	final, err := tea.NewProgram(newModel(args), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return fmt.Errorf("failed to run popup: %w", err)
	}

	text := final.(model).result()
	if args.Output != "" {
		return os.WriteFile(args.Output, []byte(text), 0600)
	}
	if text == "" {
		return nil
	}

	_, err = io.WriteString(stdout, text)
	return err
}
