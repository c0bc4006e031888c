package main

import (
	"fmt"
	"os"

	"github.com/metakael/programme-outline/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	outlinesLimit  int
	outlinesOffset int
	outlinesEdit   string
)

var outlinesCmd = &cobra.Command{
	Use:   "outlines",
	Short: "Manage generated outlines",
}

var outlinesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated outlines, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		result, err := outlineService.ListOutlines(cmd.Context(), service.ListOutlinesRequest{
			Limit:  outlinesLimit,
			Offset: outlinesOffset,
		})
		if err != nil {
			fatal("Error listing outlines", err)
		}

		if len(result.Outlines) == 0 {
			fmt.Println("No outlines generated yet")
			return
		}

		for _, outline := range result.Outlines {
			fmt.Printf("%s  %s  %3d min  %s\n",
				outline.ID,
				outline.CreatedAt.Format("2006-01-02 15:04"),
				outline.TotalDuration,
				outline.Title)
		}
	},
}

var outlinesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a generated outline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := uuid.Parse(args[0])
		if err != nil {
			fatal("Invalid outline id", err)
		}

		result, err := outlineService.GetOutline(cmd.Context(), service.GetOutlineRequest{ID: id})
		if err != nil {
			fatal("Error loading outline", err)
		}

		outline := result.Outline
		fmt.Printf("Title:    %s\n", outline.Title)
		fmt.Printf("Duration: %d min planned, %d segments\n", outline.TotalDuration, len(outline.Segments))
		fmt.Printf("Created:  %s\n", outline.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
		fmt.Println(outline.Content)
	},
}

var outlinesEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Replace an outline's content from a file",
	Long: `Edit replaces the outline's full text with the contents of the given
file and re-derives the segment list from the new text.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := uuid.Parse(args[0])
		if err != nil {
			fatal("Invalid outline id", err)
		}

		content, err := os.ReadFile(outlinesEdit)
		if err != nil {
			fatal("Error reading content file", err)
		}

		result, err := outlineService.UpdateOutlineContent(cmd.Context(), service.UpdateOutlineContentRequest{
			ID:      id,
			Content: string(content),
		})
		if err != nil {
			fatal("Error updating outline", err)
		}

		fmt.Printf("Updated outline %s: %d segments\n", result.Outline.ID, len(result.Outline.Segments))
	},
}

var outlinesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a generated outline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := uuid.Parse(args[0])
		if err != nil {
			fatal("Invalid outline id", err)
		}

		if _, err := outlineService.DeleteOutline(cmd.Context(), service.DeleteOutlineRequest{ID: id}); err != nil {
			fatal("Error deleting outline", err)
		}

		fmt.Printf("Outline deleted: %s\n", id)
	},
}

var outlinesTracesCmd = &cobra.Command{
	Use:   "traces [outline-id]",
	Short: "List the generation traces recorded for an outline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := uuid.Parse(args[0])
		if err != nil {
			fatal("Invalid outline id", err)
		}

		result, err := outlineService.ListTraces(cmd.Context(), service.ListTracesRequest{OutlineID: id})
		if err != nil {
			fatal("Error listing traces", err)
		}

		if len(result.Traces) == 0 {
			fmt.Println("No traces recorded for this outline")
			return
		}

		for _, trace := range result.Traces {
			line := fmt.Sprintf("%s  %s  %-7s  %-9s  %s/%s  attempts=%d",
				trace.ID,
				trace.CreatedAt.Format("2006-01-02 15:04:05"),
				trace.Kind,
				trace.Status,
				trace.Provider,
				trace.Model,
				trace.Attempts)
			if trace.ErrorMessage != nil {
				line += "  error=" + *trace.ErrorMessage
			}
			fmt.Println(line)
		}
	},
}

var outlinesTraceCmd = &cobra.Command{
	Use:   "trace [trace-id]",
	Short: "Show one generation trace with its full prompt and response",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := uuid.Parse(args[0])
		if err != nil {
			fatal("Invalid trace id", err)
		}

		result, err := outlineService.GetTrace(cmd.Context(), service.GetTraceRequest{ID: id})
		if err != nil {
			fatal("Error loading trace", err)
		}

		trace := result.Trace
		fmt.Printf("Kind:     %s\n", trace.Kind)
		fmt.Printf("Status:   %s\n", trace.Status)
		fmt.Printf("Provider: %s (%s)\n", trace.Provider, trace.Model)
		fmt.Printf("Attempts: %d\n", trace.Attempts)
		if trace.OutlineID != nil {
			fmt.Printf("Outline:  %s\n", *trace.OutlineID)
		}
		if trace.ErrorMessage != nil {
			fmt.Printf("Error:    %s\n", *trace.ErrorMessage)
		}
		fmt.Printf("\nPROMPT:\n%s\n", trace.Prompt)
		fmt.Printf("\nRESPONSE:\n%s\n", trace.RawResponse)
	},
}

func init() {
	rootCmd.AddCommand(outlinesCmd)
	outlinesCmd.AddCommand(outlinesListCmd)
	outlinesCmd.AddCommand(outlinesShowCmd)
	outlinesCmd.AddCommand(outlinesEditCmd)
	outlinesCmd.AddCommand(outlinesDeleteCmd)
	outlinesCmd.AddCommand(outlinesTracesCmd)
	outlinesCmd.AddCommand(outlinesTraceCmd)

	outlinesListCmd.Flags().IntVar(&outlinesLimit, "limit", 20, "Maximum number of outlines to list")
	outlinesListCmd.Flags().IntVar(&outlinesOffset, "offset", 0, "Number of outlines to skip")
	outlinesEditCmd.Flags().StringVarP(&outlinesEdit, "file", "f", "", "File holding the new outline content")
	outlinesEditCmd.MarkFlagRequired("file")
}
