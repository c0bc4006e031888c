package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/metakael/programme-outline/models"
	"github.com/metakael/programme-outline/service"

	"github.com/spf13/cobra"
)

var ingestDescription string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file|directory]...",
	Short: "Ingest reference outlines into the corpus",
	Long: `Ingest reads one or more reference outline files (plain text, markdown,
or text extracted from PDF/DOCX), stores them, and rebuilds the index.
Directory arguments ingest every regular file inside, without recursion.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		var paths []string
		for _, arg := range args {
			info, err := os.Stat(arg)
			if err != nil {
				fatal("Error reading path", err)
			}
			if !info.IsDir() {
				paths = append(paths, arg)
				continue
			}

			entries, err := os.ReadDir(arg)
			if err != nil {
				fatal("Error reading directory", err)
			}
			for _, entry := range entries {
				if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
					continue
				}
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}

		failures := 0
		for _, path := range paths {
			ref, err := ingestFile(ctx, path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error ingesting %s: %v\n", path, err)
				failures++
				continue
			}
			fmt.Printf("Ingested %s: %s (%s)\n", filepath.Base(path), ref.Title, ref.ID)
		}

		if failures > 0 {
			os.Exit(1)
		}
	},
}

// ingestFile runs one file through the ingest service
func ingestFile(ctx context.Context, path string) (*models.ReferenceDocument, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	req := service.IngestReferenceRequest{
		Filename: filepath.Base(path),
		Data:     file,
	}
	if ingestDescription != "" {
		req.Description = &ingestDescription
	}

	result, err := ingestService.IngestReference(ctx, req)
	if err != nil {
		return nil, err
	}

	return result.Reference, nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingestDescription, "description", "d", "", "Description stored with each ingested reference")
}
