package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"bookspin/internal/ai"
	"bookspin/internal/human"
	"bookspin/internal/scraper"
	"bookspin/internal/store"
	"bookspin/internal/workflow"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	runLabel    string
	runAuto     bool
	runSimulate bool
	runParallel int
)

// runCmd drives the revision workflow for one or more chapters.
var runCmd = &cobra.Command{
	Use:   "run [url...]",
	Short: "Run the revision workflow for chapter URLs",
	Long: `Fetches each chapter, then iterates rewrite -> review -> human decision
until you finalize, stop, or the iteration budget runs out.

Interactive runs take a single URL and prompt on stdin. With --auto, any
number of URLs are processed concurrently and every candidate is approved
without prompting (useful for bulk first passes).

Examples:
  bookspin run --label "Chapter 1" https://en.wikisource.org/wiki/The_Gates_of_Morning/Book_1/Chapter_1
  bookspin run --auto https://.../Chapter_1 https://.../Chapter_2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWorkflow,
}

func init() {
	runCmd.Flags().StringVarP(&runLabel, "label", "l", "", "Chapter label (default: derived from the URL)")
	runCmd.Flags().BoolVar(&runAuto, "auto", false, "Approve every iteration without prompting")
	runCmd.Flags().BoolVar(&runSimulate, "simulate", false, "Use the offline simulated rewriter/reviewer")
	runCmd.Flags().IntVar(&runParallel, "parallel", 2, "Concurrent chapters in --auto mode")
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	if !runAuto && len(args) > 1 {
		return fmt.Errorf("interactive runs take one URL; use --auto for batches")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	rod := scraper.NewRodScraper(cfg.Scraper)
	defer rod.Close()

	rewriter, reviewer, err := buildEngines(ctx)
	if err != nil {
		return err
	}

	if runAuto {
		return runBatch(ctx, s, rod, rewriter, reviewer, args)
	}

	locator := args[0]
	label := runLabel
	if label == "" {
		label = labelFromURL(locator)
	}

	surface := human.NewTerminal(os.Stdin, os.Stdout)
	ctrl := workflow.NewController(s, rod, rewriter, reviewer, surface, cfg.Workflow.Options())

	result, err := ctrl.Run(ctx, locator, label)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func runBatch(ctx context.Context, s *store.SQLiteStore, acquirer scraper.Acquirer, rewriter ai.Rewriter, reviewer ai.Reviewer, locators []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runParallel)

	results := make([]workflow.Result, len(locators))
	for i, locator := range locators {
		g.Go(func() error {
			ctrl := workflow.NewController(s, acquirer, rewriter, reviewer, human.AutoApprove{}, cfg.Workflow.Options())
			result, err := ctrl.Run(ctx, locator, labelFromURL(locator))
			if err != nil {
				logger.Error("Chapter run failed", zap.String("locator", locator), zap.Error(err))
				return err
			}
			results[i] = result
			return nil
		})
	}
	err := g.Wait()
	for _, result := range results {
		if result.ChapterID != "" {
			printResult(result)
		}
	}
	return err
}

func buildEngines(ctx context.Context) (ai.Rewriter, ai.Reviewer, error) {
	if runSimulate || cfg.AI.Simulate || cfg.AI.APIKey == "" {
		if cfg.AI.APIKey == "" && !runSimulate && !cfg.AI.Simulate {
			logger.Warn("No API key configured, falling back to the simulated engine")
		}
		engine := ai.NewSimulatedEngine()
		return engine, engine, nil
	}
	engine, err := ai.NewGeminiEngine(ctx, cfg.AI)
	if err != nil {
		return nil, nil, err
	}
	return engine, engine, nil
}

// labelFromURL turns the last path segment of a chapter URL into a readable
// label, e.g. ".../Book_1/Chapter_1" -> "Chapter_1".
func labelFromURL(locator string) string {
	u, err := url.Parse(locator)
	if err != nil || u.Path == "" {
		return locator
	}
	base := path.Base(strings.TrimSuffix(u.Path, "/"))
	if base == "." || base == "/" {
		return locator
	}
	return base
}

func printResult(result workflow.Result) {
	fmt.Printf("\n%s: %s\n", result.ChapterID, result.Status)
	if result.Outcome != nil {
		fmt.Printf("best version: %s (type=%s iteration=%d, %d bytes)\n",
			result.Outcome.ID, result.Outcome.Type, result.Outcome.Iteration, len(result.Outcome.Content))
	}
}
