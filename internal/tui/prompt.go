package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// PromptMarker is printed in front of user input.
const PromptMarker = "==> "

// Prompter reads selections from the user. On a terminal it runs a small
// bubbletea program with a text input; otherwise it reads one line per call.
type Prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
	tty    bool
}

// NewPrompter creates a prompter reading from in and echoing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:     in,
		out:    out,
		reader: bufio.NewReader(in),
		tty:    isTerminal(in),
	}
}

// Prompt returns the trimmed input line. Cancelling the interactive prompt
// and reaching end of input both yield an empty string.
func (p *Prompter) Prompt(ctx context.Context) (string, error) {
	if p.tty {
		return p.promptInteractive(ctx)
	}
	return p.promptLine()
}

func (p *Prompter) promptLine() (string, error) {
	_, _ = fmt.Fprint(p.out, PromptMarker)

	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) promptInteractive(ctx context.Context) (string, error) {
	prog := tea.NewProgram(newPromptModel(),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)

	final, err := prog.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("failed to run prompt: %w", err)
	}

	m := final.(promptModel)
	if m.canceled {
		return "", nil
	}
	return strings.TrimSpace(m.input.Value()), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// promptModel is a single line input that quits on enter, esc or ctrl+c.
type promptModel struct {
	input     textinput.Model
	submitted bool
	canceled  bool
}

func newPromptModel() promptModel {
	ti := textinput.New()
	ti.Prompt = PromptMarker
	ti.Placeholder = "1-3 5 7"
	ti.CharLimit = 256
	ti.Focus()

	return promptModel{input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.canceled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.submitted || m.canceled {
		// Leave the entered line on screen once the program exits.
		return PromptMarker + m.input.Value() + "\n"
	}
	return m.input.View() + "\n"
}
