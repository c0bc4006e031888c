package main

import (
	"fmt"
	"os"

	"github.com/metakael/programme-outline/models"
	"github.com/metakael/programme-outline/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	generateSpecPath string
	generateProvider string
	generateModel    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a programme outline from a YAML specification",
	Long: `Generate builds a prompt from the specification, the retrieved reference
excerpts, and the corpus style profile, then calls the configured LLM
provider and stores the resulting outline.

The specification file looks like:

  title: Team Retrospective
  objectives: |
    Reflect on the quarter and agree on three improvements.
  total_duration: 90
  style_adherence: 0.8
  reference_ids: []        # empty means the whole corpus
  segments:
    - title: Opening
      duration: 10
      description: welcome and framing`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		spec, err := loadSpecification(generateSpecPath)
		if err != nil {
			fatal("Error reading specification", err)
		}

		genService, closeClient, err := newGenerationService(ctx, generateProvider, generateModel)
		if err != nil {
			fatal("Error initializing generation", err)
		}
		defer closeClient()

		if err := ingestService.RebuildIndex(ctx); err != nil {
			fatal("Error building reference index", err)
		}

		result, err := genService.GenerateOutline(ctx, service.GenerateOutlineRequest{Spec: spec})
		if err != nil {
			fatal("Error generating outline", err)
		}

		for _, warning := range result.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}

		fmt.Println(result.Outline.Content)
		fmt.Printf("\nSaved outline %s\n", result.Outline.ID)
	},
}

// specFile mirrors the YAML specification document
type specFile struct {
	Title          string            `yaml:"title"`
	Objectives     string            `yaml:"objectives"`
	TotalDuration  int               `yaml:"total_duration"`
	StyleAdherence float64           `yaml:"style_adherence"`
	ReferenceIDs   []string          `yaml:"reference_ids"`
	Segments       []specFileSegment `yaml:"segments"`
}

type specFileSegment struct {
	Title       string `yaml:"title"`
	Duration    *int   `yaml:"duration"`
	Description string `yaml:"description"`
}

// loadSpecification reads and converts a YAML specification file
func loadSpecification(path string) (models.Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Specification{}, err
	}

	var file specFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return models.Specification{}, fmt.Errorf("failed to parse specification: %w", err)
	}

	spec := models.Specification{
		Title:          file.Title,
		Objectives:     file.Objectives,
		TotalDuration:  file.TotalDuration,
		StyleAdherence: file.StyleAdherence,
	}

	for _, raw := range file.ReferenceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return models.Specification{}, fmt.Errorf("invalid reference id %q: %w", raw, err)
		}
		spec.ReferenceIDs = append(spec.ReferenceIDs, id)
	}

	for _, seg := range file.Segments {
		spec.Segments = append(spec.Segments, models.SegmentSpec{
			Title:       seg.Title,
			Duration:    seg.Duration,
			Description: seg.Description,
		})
	}

	return spec, nil
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateSpecPath, "spec", "f", "", "Path to the YAML specification file")
	generateCmd.Flags().StringVar(&generateProvider, "provider", "", "LLM provider: gemini, openai, or mock (default from LLM_PROVIDER)")
	generateCmd.Flags().StringVar(&generateModel, "model", "", "Model name (default from LLM_MODEL or the provider default)")
	generateCmd.MarkFlagRequired("spec")
}
