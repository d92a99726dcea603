// Package menu drives dmenu-style picker programs: a list of lines goes in on
// stdin, the chosen (or typed) line comes back on stdout.
package menu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vannrr/fmark/internal/cachemanager"
	"github.com/vannrr/fmark/internal/log"
	"github.com/vannrr/fmark/internal/ui/picker"
)

// CurrentMarker is appended to the default item while it is displayed.
const CurrentMarker = " <-- current"

// Program names.
const (
	Bemenu = "bemenu"
	Dmenu  = "dmenu"
	Rofi   = "rofi"
	Fzf    = "fzf"
	TUI    = "tui"
)

var (
	// ErrUnsupportedMenu is returned for a program fmark cannot drive.
	ErrUnsupportedMenu = errors.New("unsupported menu program")
	// ErrProgramNotFound is returned when the menu program is not on $PATH.
	ErrProgramNotFound = errors.New("menu program not found")
)

// Programs lists every supported menu program.
var Programs = []string{Bemenu, Dmenu, Rofi, Fzf, TUI}

const lookPathTTL = 5 * time.Minute

// Chooser asks the user to pick one of items or type a line. A nil items
// slice means free text input. def, when not empty, is the item offered as
// the current value. An empty answer means the user cancelled.
type Chooser interface {
	Choose(ctx context.Context, items []string, def, prompt string) (string, error)
}

// Executor runs a program with the given stdin and returns its stdout.
type Executor interface {
	Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, error)
}

// PickerFunc runs the built-in terminal picker.
type PickerFunc func(ctx context.Context, items []string, def, prompt string, rows int) (string, error)

// Menu is a Chooser backed by an external program or the built-in picker.
type Menu struct {
	program  string
	rows     int
	executor Executor
	picker   PickerFunc
	lookPath *cachemanager.ReadThroughCache[string, string, string]
}

// Option configures a Menu.
type Option func(*Menu)

// WithExecutor replaces the process runner.
func WithExecutor(e Executor) Option {
	return func(m *Menu) { m.executor = e }
}

// WithLookPath replaces the $PATH lookup.
func WithLookPath(fn func(ctx context.Context, name string) (string, error)) Option {
	return func(m *Menu) { m.lookPath = newLookPathCache(fn) }
}

// WithPicker replaces the built-in terminal picker.
func WithPicker(fn PickerFunc) Option {
	return func(m *Menu) { m.picker = fn }
}

// New returns a Menu for program showing at most rows lines.
func New(program string, rows int, opts ...Option) (*Menu, error) {
	if !slices.Contains(Programs, program) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMenu, program)
	}

	m := &Menu{
		program:  program,
		rows:     rows,
		executor: execExecutor{},
		picker:   RunPicker,
		lookPath: newLookPathCache(func(_ context.Context, name string) (string, error) {
			return exec.LookPath(name)
		}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Program returns the configured program name.
func (m *Menu) Program() string {
	return m.program
}

// LookupStats reports how often the program was resolved on $PATH and how
// often the cached path was reused.
func (m *Menu) LookupStats() cachemanager.Stats {
	return m.lookPath.Stats()
}

// Choose implements Chooser.
func (m *Menu) Choose(ctx context.Context, items []string, def, prompt string) (string, error) {
	items = markCurrent(items, def)

	var (
		answer string
		err    error
	)
	if m.program == TUI {
		answer, err = m.picker(ctx, items, markedDefault(items, def), prompt, m.rows)
	} else {
		answer, err = m.runProgram(ctx, items, prompt)
	}
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if def != "" {
		answer = strings.ReplaceAll(answer, def+CurrentMarker, def)
	}
	log.Debug(log.CatMenu, "Menu answered", "program", m.program, "prompt", prompt, "answer", answer)
	return answer, nil
}

// Args returns the command line for the configured program.
func (m *Menu) Args(prompt string) []string {
	rows := strconv.Itoa(m.rows)
	switch m.program {
	case Rofi:
		return []string{"-dmenu", "-i", "-l", rows, "-p", prompt}
	case Fzf:
		return []string{"-i", "--print-query", "--prompt", prompt + "> "}
	default:
		return []string{"-i", "-l", rows, "-p", prompt}
	}
}

func (m *Menu) runProgram(ctx context.Context, items []string, prompt string) (string, error) {
	path, err := m.lookPath.Get(ctx, m.program, m.program, lookPathTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrProgramNotFound, m.program, err)
	}
	stats := m.lookPath.Stats()
	log.Debug(log.CatMenu, "Resolved menu program", "program", m.program, "path", path,
		"lookups", stats.Loads, "cached", stats.Hits)

	var stdin io.Reader
	if items != nil || m.program == Fzf {
		stdin = strings.NewReader(strings.Join(items, "\n"))
	}

	out, err := m.executor.Run(ctx, path, m.Args(prompt), stdin)
	if err != nil {
		return "", fmt.Errorf("running %s: %w", m.program, err)
	}

	answer := string(out)
	if m.program == Fzf {
		answer = fzfAnswer(answer)
	}
	return answer, nil
}

// fzfAnswer picks the selection out of fzf --print-query output: the query
// on the first line, then the selected item if anything matched.
func fzfAnswer(out string) string {
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

// markCurrent appends CurrentMarker to every item equal to def.
func markCurrent(items []string, def string) []string {
	if def == "" || items == nil {
		return items
	}
	marked := slices.Clone(items)
	for i, item := range marked {
		if item == def {
			marked[i] = item + CurrentMarker
		}
	}
	return marked
}

func markedDefault(items []string, def string) string {
	if def == "" {
		return ""
	}
	if slices.Contains(items, def+CurrentMarker) {
		return def + CurrentMarker
	}
	return def
}

func newLookPathCache(fn func(ctx context.Context, name string) (string, error)) *cachemanager.ReadThroughCache[string, string, string] {
	return cachemanager.NewReadThroughCache[string, string, string](
		cachemanager.NewInMemoryCacheManager[string, string]("lookpath", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval),
		fn,
		false,
	)
}

type execExecutor struct{}

// Run starts the program and waits for it. A non-zero exit status is not an
// error: menu programs use it to signal "nothing chosen".
func (execExecutor) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...) //nolint:gosec // G204: program is from the supported list
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		log.Debug(log.CatMenu, "Menu program exited", "path", path, "code", exitErr.ExitCode())
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// RunPicker runs the built-in terminal picker on the controlling terminal.
func RunPicker(ctx context.Context, items []string, def, prompt string, rows int) (string, error) {
	m := picker.New(prompt, items).SetRows(rows).SetSelected(def)

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("running picker: %w", err)
	}

	answer, _ := final.(picker.Model).Result()
	return answer, nil
}
