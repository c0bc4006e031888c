package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/metakael/programme-outline/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [outline-id]",
	Short: "Export an outline's text content",
	Long:  `Export writes the outline's plain-text content to a file, or to stdout when no output file is given.`,
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

		content := result.Outline.Content
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}

		if exportOutput == "" {
			fmt.Print(content)
			return
		}

		if err := os.WriteFile(exportOutput, []byte(content), 0644); err != nil {
			fatal("Error writing output file", err)
		}

		fmt.Printf("Exported outline to %s\n", exportOutput)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "File to write (default stdout)")
}
