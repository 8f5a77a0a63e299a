package main

import (
	"fmt"
	"strings"

	"bookspin/internal/retrieval"
	"bookspin/internal/store"
	"bookspin/internal/version"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	rowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	faintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// versionsCmd lists a chapter's full history.
var versionsCmd = &cobra.Command{
	Use:   "versions [chapter]",
	Short: "List every stored version of a chapter",
	Long: `Lists a chapter's complete append-only history in creation order:
raw capture, AI spins, reviews with scores, human edits, and finals.

The chapter argument is a label or id; labels are normalized the same way
the run command normalizes them.`,
	Args: cobra.ExactArgs(1),
	RunE: listVersions,
}

// bestCmd shows the selector's pick for a chapter.
var bestCmd = &cobra.Command{
	Use:   "best [chapter]",
	Short: "Show the best known version of a chapter",
	Long: `Selects and renders the best version of a chapter: explicit finals first,
then human edits, then the highest-scored review, then auto-finished
output, then whatever exists.`,
	Args: cobra.ExactArgs(1),
	RunE: showBest,
}

func listVersions(cmd *cobra.Command, args []string) error {
	chapterID := version.ChapterID(args[0])

	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.ListVersions(cmd.Context(), chapterID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("No versions for chapter %q\n", chapterID)
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%s — %d versions", chapterID, len(records))))
	for _, rec := range records {
		line := fmt.Sprintf("%-4d %-12s iter=%-2d %s  %s",
			rec.Seq, rec.Type, rec.Iteration,
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"), rec.ID)
		fmt.Println(rowStyle.Render(line))
		if scores, ok := version.ExtractScores(rec.Metadata); ok {
			fmt.Println(faintStyle.Render(fmt.Sprintf(
				"     composite %.2f (fidelity %.1f, readability %.1f, grammar %.1f, originality %.1f)",
				scores.Composite(), scores.Fidelity, scores.Readability, scores.Grammar, scores.Originality)))
		}
		if feedback, ok := rec.Metadata[version.MetaFeedback].(string); ok && feedback != "" {
			fmt.Println(faintStyle.Render("     " + feedback))
		}
	}
	return nil
}

func showBest(cmd *cobra.Command, args []string) error {
	chapterID := version.ChapterID(args[0])

	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	best, err := retrieval.BestForChapter(cmd.Context(), s, chapterID)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%s — %s @ iteration %d (%s)",
		chapterID, best.Type, best.Iteration, best.ID)))

	rendered, err := renderContent(chapterID, best.Content)
	if err != nil {
		// Plain fallback when the terminal renderer is unavailable.
		fmt.Println(best.Content)
		return nil
	}
	fmt.Println(rendered)
	return nil
}

func renderContent(title, content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n\n")
	sb.WriteString(content)
	return renderer.Render(sb.String())
}
