package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/roadmap-backend/internal/app"
	catalogmod "github.com/yungbote/roadmap-backend/internal/modules/catalog"
	"github.com/yungbote/roadmap-backend/internal/platform/embedding"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the knowledge catalog",
	}
	cmd.AddCommand(newCatalogImportCmd())
	return cmd
}

func newCatalogImportCmd() *cobra.Command {
	var (
		file      string
		embed     bool
		dryRun    bool
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert catalog items from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, cfg, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open catalog file: %w", err)
			}
			defer f.Close()

			theDB, err := app.OpenDB(log, cfg.DB, true)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := theDB.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()

			var embedder embedding.Embedder
			if embed {
				e, closeFn, err := app.NewEmbedder(log, cfg)
				if err != nil {
					return err
				}
				defer closeFn()
				embedder = e
			}

			rep, err := app.NewImporter(theDB, log, embedder).Import(cmd.Context(), f, catalogmod.ImportOptions{
				Embed:     embed,
				BatchSize: batchSize,
				DryRun:    dryRun,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog YAML file")
	cmd.Flags().BoolVar(&embed, "embed", false, "recompute embeddings with the configured embedder")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and embed without writing")
	cmd.Flags().IntVar(&batchSize, "batch-size", 64, "items per embedding request")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
