package main

import (
	"fmt"

	"github.com/metakael/programme-outline/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var referencesCmd = &cobra.Command{
	Use:   "references",
	Short: "Manage ingested reference outlines",
}

var referencesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested references in ingestion order",
	Run: func(cmd *cobra.Command, args []string) {
		result, err := ingestService.ListReferences(cmd.Context(), service.ListReferencesRequest{})
		if err != nil {
			fatal("Error listing references", err)
		}

		if len(result.References) == 0 {
			fmt.Println("No references ingested yet")
			return
		}

		for _, ref := range result.References {
			fmt.Printf("%s  #%-3d  %-8s  %s\n", ref.ID, ref.IngestSeq, ref.Format, ref.Title)
		}
	},
}

var referencesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a reference's metadata and extracted content",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := uuid.Parse(args[0])
		if err != nil {
			fatal("Invalid reference id", err)
		}

		result, err := ingestService.GetReference(cmd.Context(), service.GetReferenceRequest{ID: id})
		if err != nil {
			fatal("Error loading reference", err)
		}

		ref := result.Reference
		fmt.Printf("Title:     %s\n", ref.Title)
		if ref.Description != nil {
			fmt.Printf("About:     %s\n", *ref.Description)
		}
		fmt.Printf("Filename:  %s\n", ref.Filename)
		fmt.Printf("Format:    %s\n", ref.Format)
		fmt.Printf("Ingested:  #%d at %s\n", ref.IngestSeq, ref.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Stored at: %s\n", ref.StoragePath)
		fmt.Println()
		fmt.Println(ref.Content)
	},
}

var referencesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a reference and its stored upload",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := uuid.Parse(args[0])
		if err != nil {
			fatal("Invalid reference id", err)
		}

		if _, err := ingestService.DeleteReference(cmd.Context(), service.DeleteReferenceRequest{ID: id}); err != nil {
			fatal("Error deleting reference", err)
		}

		fmt.Printf("Reference deleted: %s\n", id)
	},
}

func init() {
	rootCmd.AddCommand(referencesCmd)
	referencesCmd.AddCommand(referencesListCmd)
	referencesCmd.AddCommand(referencesShowCmd)
	referencesCmd.AddCommand(referencesDeleteCmd)
}
