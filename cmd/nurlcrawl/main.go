// Command nurlcrawl is the crawler's entry point: the root command runs
// a crawl, and the report subcommand summarizes a persisted snapshot.
package main

import (
	"fmt"
	"os"

	cmd "github.com/nurlcrawl/nurlcrawl/internal/cli"
	"github.com/nurlcrawl/nurlcrawl/internal/nap"
	"github.com/nurlcrawl/nurlcrawl/internal/report"
	"github.com/spf13/cobra"
)

var (
	reportSaveFile string
	reportTopN     int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a persisted crawl snapshot.",
	Run: func(c *cobra.Command, args []string) {
		n, cerr := nap.New(reportSaveFile)
		if cerr != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", cerr)
			os.Exit(1)
		}
		defer n.Close(0)

		r := report.Generate(n.Snapshot(), reportTopN)
		fmt.Printf("Total URLs: %d\n", r.TotalURLs)
		fmt.Printf("Total downloads: %d\n", r.TotalDownloads)
		fmt.Printf("Unique subdomains: %d\n", r.UniqueSubdomains)
		fmt.Printf("Longest page: %s (%d words)\n", r.LongestPage.URL, r.LongestPage.WordCount)
		fmt.Println("Top words:")
		for _, w := range r.TopWords {
			fmt.Printf("  %s: %d\n", w.Word, w.Count)
		}
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportSaveFile, "save-file", "crawl.nap", "persisted frontier snapshot path")
	reportCmd.Flags().IntVar(&reportTopN, "top", 20, "number of top words to report")
	cmd.RootCmd().AddCommand(reportCmd)
}

func main() {
	cmd.Execute()
}
