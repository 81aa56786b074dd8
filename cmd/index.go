package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/retrieval"
)

const defaultIndexPath = "data/index"

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the catalog and save the search index",
	Run: func(cmd *cobra.Command, _ []string) {
		buildIndex(cmd)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringP("output", "o", "", "index path prefix (default is index.path or "+defaultIndexPath+")")
}

func buildIndex(cmd *cobra.Command) {
	ctx := context.Background()

	a, err := bootstrap()
	if err != nil {
		log.Fatalf("starting: %s", err)
	}
	logger := a.logger

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = a.config.Index.Path
	}
	if output == "" {
		output = defaultIndexPath
	}

	if err := a.loadCatalog(ctx); err != nil {
		logger.Fatal("loading the catalog", zap.Error(err))
	}

	embedder, err := a.newEmbedder(ctx)
	if err != nil {
		logger.Fatal("creating embedder", zap.Error(err))
	}

	index := retrieval.New(embedder, logger)
	if err := index.Build(ctx, a.entries); err != nil {
		logger.Fatal("building the index", zap.Error(err))
	}

	if err := index.Save(output); err != nil {
		logger.Fatal("saving the index", zap.Error(err))
	}

	vectors, entries := retrieval.Paths(output)
	logger.Info("index saved",
		zap.Int("count", index.Len()),
		zap.String("vectors", vectors),
		zap.String("entries", entries),
	)
}
