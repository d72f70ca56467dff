package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/persistorai/actorweb/client"
)

func newSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the title catalog",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			titles, err := apiClient.Titles.Search(context.Background(), args[0], limit)
			if err != nil {
				fatal("search", err)
			}
			if flagFmt == "table" {
				printTitleTable(titles)
				if len(titles) == 0 {
					printSuggestionHint(context.Background())
				}
				return
			}
			quiet := ""
			if len(titles) > 0 {
				quiet = titles[0].ID
			}
			output(titles, quiet)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	return cmd
}

func newTitleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "title <key>",
		Short: "Show a title and its cast",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t, err := apiClient.Titles.Get(context.Background(), args[0])
			if err != nil {
				fatal("get title", err)
			}
			if flagFmt == "table" {
				headers := []string{"ACTOR", "CHARACTER"}
				rows := make([][]string, 0, len(t.Cast))
				for _, m := range t.Cast {
					rows = append(rows, []string{m.ActorName, m.Character})
				}
				formatTable(headers, rows)
				return
			}
			output(t, t.ID)
		},
	}
}

func newConnectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connections <key>",
		Short: "List titles sharing cast with a title",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			g, err := apiClient.Titles.Connections(context.Background(), args[0])
			if err != nil {
				fatal("connections", err)
			}
			if flagFmt == "table" {
				printGraphTable(g)
				return
			}
			output(g, g.CenterID)
		},
	}
}

func newSuggestCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Pick random starter titles from the catalog",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			titles, err := apiClient.Titles.Suggestions(context.Background(), n)
			if err != nil {
				fatal("suggest", err)
			}
			if flagFmt == "table" {
				printTitleTable(titles)
				return
			}
			quiet := ""
			if len(titles) > 0 {
				quiet = titles[0].Key
			}
			output(titles, quiet)
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 3, "Number of suggestions")
	return cmd
}

// printSuggestionHint offers starter titles after an empty search. Failures
// are ignored since the search itself succeeded.
func printSuggestionHint(ctx context.Context) {
	titles, err := apiClient.Titles.Suggestions(ctx, 0)
	if err != nil || len(titles) == 0 {
		return
	}
	fmt.Printf("\nNo results. Try: %s\n", suggestionList(titles))
}

func suggestionList(titles []client.TitleSummary) string {
	quoted := make([]string, len(titles))
	for i, t := range titles {
		quoted[i] = fmt.Sprintf("%q", t.Title)
	}
	return strings.Join(quoted, ", ")
}
