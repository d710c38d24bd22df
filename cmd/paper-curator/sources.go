package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the available paper sources",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("arxiv        arXiv listing API (filter with --categories)")
		fmt.Println("huggingface  Hugging Face daily papers")
		fmt.Println("rss          journal/lab RSS and Atom feeds (enable with --feeds)")
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
