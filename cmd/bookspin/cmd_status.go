package main

import (
	"fmt"

	"bookspin/internal/store"

	"github.com/spf13/cobra"
)

// statusCmd summarizes the store contents.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show chapters in the store and their latest state",
	RunE:  showStatus,
}

func showStatus(cmd *cobra.Command, args []string) error {
	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	summaries, err := s.Chapters(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("store: %s\n", cfg.DBPath)
	if len(summaries) == 0 {
		fmt.Println("no chapters yet")
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%d chapters", len(summaries))))
	for _, sum := range summaries {
		fmt.Println(rowStyle.Render(fmt.Sprintf("%-40s %3d versions  last=%-12s %s",
			sum.ChapterID, sum.Versions, sum.LastType,
			sum.UpdatedAt.Local().Format("2006-01-02 15:04"))))
	}
	return nil
}
