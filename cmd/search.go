package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spigell/scheme-navigator/internal/conversation"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog by free text and filters",
	Run: func(cmd *cobra.Command, args []string) {
		search(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("state", "", "only schemes available in this state")
	searchCmd.Flags().String("category", "", "only schemes in this category")
	searchCmd.Flags().Int("min-age", -1, "only schemes open to this age or older")
	searchCmd.Flags().Int("max-age", -1, "only schemes open to this age or younger")
	searchCmd.Flags().IntP("top-k", "k", conversation.DefaultTopK, "maximum number of results")
}

func search(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	a, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("starting: %s", err)
	}

	flags := cmd.Flags()
	req := conversation.SearchRequest{Query: strings.Join(args, " ")}
	req.Region, _ = flags.GetString("state")
	req.Topic, _ = flags.GetString("category")
	req.TopK, _ = flags.GetInt("top-k")
	req.MinAge = optionalInt(cmd, "min-age")
	req.MaxAge = optionalInt(cmd, "max-age")

	hits := a.service.Search(ctx, req)
	if len(hits) == 0 {
		fmt.Println("No schemes found.")
		return
	}

	for i, h := range hits {
		fmt.Printf("%d. %s [%s] (score %.2f)\n   %s\n", i+1, h.Entry.Name, h.Entry.Category(), h.Score, h.Entry.Description)
	}
}

// optionalInt returns nil unless the flag was set explicitly.
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return nil
	}
	return &v
}
