package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/persistorai/actorweb/client"
)

func formatJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode json: %v\n", err)
		os.Exit(1)
	}
}

func formatTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			parts[i] = fmt.Sprintf("%-*s", w, cell)
		}
		fmt.Println(strings.Join(parts, "  "))
	}

	printRow(headers)
	seps := make([]string, len(headers))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

func formatQuiet(id string) {
	fmt.Println(id)
}

// output prints v as JSON, or only quietVal in quiet mode. Commands with a
// table view handle "table" themselves before calling output.
func output(v any, quietVal string) {
	switch flagFmt {
	case "quiet":
		formatQuiet(quietVal)
	default:
		formatJSON(v)
	}
}

func yearString(y int) string {
	if y == 0 {
		return "-"
	}
	return strconv.Itoa(y)
}

func printTitleTable(titles []client.TitleSummary) {
	headers := []string{"ID", "TITLE", "YEAR", "TYPE"}
	rows := make([][]string, 0, len(titles))
	for _, t := range titles {
		rows = append(rows, []string{t.ID, t.Title, yearString(t.Year), t.Type})
	}
	formatTable(headers, rows)
}

// printGraphTable lists the connected titles of g, heaviest first as built.
func printGraphTable(g *client.Graph) {
	titles := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		titles[n.ID] = n.Title
	}

	headers := []string{"ID", "TITLE", "SHARED", "ACTORS"}
	rows := make([][]string, 0, len(g.Edges))
	for _, e := range g.Edges {
		other := e.Target
		if other == g.CenterID {
			other = e.Source
		}
		names := make([]string, 0, len(e.SharedActors))
		for _, a := range e.SharedActors {
			names = append(names, a.ActorName)
		}
		rows = append(rows, []string{other, titles[other], strconv.Itoa(e.Weight), strings.Join(names, ", ")})
	}
	formatTable(headers, rows)
}

func printNodeStateTable(nodes []client.NodeState) {
	headers := []string{"ID", "X", "Y", "RADIUS", "PINNED"}
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			n.ID,
			fmt.Sprintf("%.1f", n.Position.X),
			fmt.Sprintf("%.1f", n.Position.Y),
			fmt.Sprintf("%.0f", n.Radius),
			strconv.FormatBool(n.Pinned),
		})
	}
	formatTable(headers, rows)
}

func printSessionTable(sessions []client.SessionSummary) {
	headers := []string{"ID", "KEY", "NODES", "AT REST", "CREATED"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.ID, s.Key, strconv.Itoa(s.Nodes), strconv.FormatBool(s.AtRest),
			s.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	formatTable(headers, rows)
}
