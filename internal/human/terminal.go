package human

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"bookspin/internal/logging"

	"github.com/charmbracelet/lipgloss"
)

const previewLimit = 500

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).
			Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Terminal is a line-oriented Surface over a reader/writer pair, normally
// stdin and stdout.
type Terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewTerminal creates a terminal surface.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Terminal{in: scanner, out: out}
}

// PresentCandidate prints the candidate preview and its review scores.
func (t *Terminal) PresentCandidate(ctx context.Context, c Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, titleStyle.Render(fmt.Sprintf("── %s · iteration %d ──", c.Chapter, c.Iteration)))

	r := c.Review
	fmt.Fprintln(t.out, scoreStyle.Render(fmt.Sprintf(
		"fidelity %.1f · readability %.1f · grammar %.1f · originality %.1f · composite %.2f",
		r.Fidelity, r.Readability, r.Grammar, r.Originality, r.Composite())))
	if r.Feedback != "" {
		fmt.Fprintln(t.out, dimStyle.Render("reviewer: "+r.Feedback))
	}
	for _, s := range r.Suggestions {
		fmt.Fprintln(t.out, dimStyle.Render("  - "+s))
	}

	preview := c.Content
	if len(preview) > previewLimit {
		preview = preview[:previewLimit] + "…"
	}
	fmt.Fprintln(t.out, previewStyle.Render(preview))
	return nil
}

// PromptFeedback reads one line of free-text feedback.
func (t *Terminal) PromptFeedback(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(t.out, promptStyle.Render("Feedback (enter to skip): "))
	line, err := t.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptDecision shows the option menu and reads one selection. Input that
// matches no option returns DecisionUnknown so the caller can count it
// against its budget.
func (t *Terminal) PromptDecision(ctx context.Context) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return DecisionUnknown, err
	}
	fmt.Fprintln(t.out, promptStyle.Render("What next?"))
	fmt.Fprintln(t.out, "  1) edit      - replace the text yourself")
	fmt.Fprintln(t.out, "  2) redirect  - re-spin with your feedback")
	fmt.Fprintln(t.out, "  3) approve   - accept and continue iterating")
	fmt.Fprintln(t.out, "  4) finalize  - accept as the finished chapter")
	fmt.Fprintln(t.out, "  5) stop      - end the workflow entirely")
	fmt.Fprint(t.out, promptStyle.Render("> "))

	line, err := t.readLine()
	if err != nil {
		return DecisionUnknown, err
	}
	decision := parseDecision(line)
	if decision == DecisionUnknown {
		fmt.Fprintln(t.out, dimStyle.Render(fmt.Sprintf("Unrecognized choice %q", strings.TrimSpace(line))))
		logging.Human("Unrecognized decision input: %q", strings.TrimSpace(line))
	}
	return decision, nil
}

// PromptManualEdit reads a full replacement text, terminated by a lone "."
// line or EOF. Empty input keeps the current text.
func (t *Terminal) PromptManualEdit(ctx context.Context, current string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintln(t.out, promptStyle.Render(`Enter replacement text. Finish with a line containing only "."`))

	var lines []string
	for t.in.Scan() {
		line := t.in.Text()
		if line == "." {
			break
		}
		lines = append(lines, line)
	}
	if err := t.in.Err(); err != nil {
		return "", fmt.Errorf("failed to read edit: %w", err)
	}

	edited := strings.TrimSpace(strings.Join(lines, "\n"))
	if edited == "" {
		fmt.Fprintln(t.out, dimStyle.Render("Empty edit, keeping current text."))
		return current, nil
	}
	return edited, nil
}

func (t *Terminal) readLine() (string, error) {
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", io.EOF
	}
	return t.in.Text(), nil
}

func parseDecision(input string) Decision {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "edit", "e":
		return DecisionEdit
	case "2", "redirect", "r", "respin", "re-spin":
		return DecisionRedirect
	case "3", "approve", "a":
		return DecisionApprove
	case "4", "finalize", "final", "f":
		return DecisionFinalize
	case "5", "stop", "s", "quit", "q":
		return DecisionStop
	}
	return DecisionUnknown
}
