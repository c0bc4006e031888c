package main

import (
	"fmt"
	"os"

	"github.com/metakael/programme-outline/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	regenerateSegment     int
	regenerateTitle       string
	regenerateDuration    int
	regenerateDescription string
	regenerateProvider    string
	regenerateModel       string
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate [outline-id]",
	Short: "Regenerate one segment of a stored outline",
	Long: `Regenerate replaces a single segment of a stored outline, keeping every
other segment byte for byte. Segments are numbered as shown in the
outline, starting at 1. Title, duration, and description flags override
the segment's current values in the regeneration prompt.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		outlineID, err := uuid.Parse(args[0])
		if err != nil {
			fatal("Invalid outline id", err)
		}
		if regenerateSegment < 1 {
			fatal("Invalid segment number", fmt.Errorf("segment numbers start at 1"))
		}

		req := service.RegenerateSegmentRequest{
			OutlineID:    outlineID,
			SegmentIndex: regenerateSegment - 1,
			Title:        regenerateTitle,
			Description:  regenerateDescription,
		}
		if cmd.Flags().Changed("duration") {
			duration := regenerateDuration
			req.Duration = &duration
		}

		genService, closeClient, err := newGenerationService(ctx, regenerateProvider, regenerateModel)
		if err != nil {
			fatal("Error initializing generation", err)
		}
		defer closeClient()

		if err := ingestService.RebuildIndex(ctx); err != nil {
			fatal("Error building reference index", err)
		}

		result, err := genService.RegenerateSegment(ctx, req)
		if err != nil {
			fatal("Error regenerating segment", err)
		}

		for _, warning := range result.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}

		fmt.Println(result.Outline.Content)
		fmt.Printf("\nUpdated outline %s\n", result.Outline.ID)
	},
}

func init() {
	rootCmd.AddCommand(regenerateCmd)
	regenerateCmd.Flags().IntVarP(&regenerateSegment, "segment", "s", 0, "Segment number to regenerate, starting at 1")
	regenerateCmd.Flags().StringVar(&regenerateTitle, "title", "", "New title for the segment")
	regenerateCmd.Flags().IntVar(&regenerateDuration, "duration", 0, "New duration in minutes for the segment")
	regenerateCmd.Flags().StringVar(&regenerateDescription, "description", "", "Description of what the segment should cover")
	regenerateCmd.Flags().StringVar(&regenerateProvider, "provider", "", "LLM provider: gemini, openai, or mock (default from LLM_PROVIDER)")
	regenerateCmd.Flags().StringVar(&regenerateModel, "model", "", "Model name (default from LLM_MODEL or the provider default)")
	regenerateCmd.MarkFlagRequired("segment")
}
