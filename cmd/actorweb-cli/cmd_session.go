package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/persistorai/actorweb/client"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage live layout sessions",
	}
	cmd.AddCommand(sessionCreateCmd())
	cmd.AddCommand(sessionListCmd())
	cmd.AddCommand(sessionGetCmd())
	cmd.AddCommand(sessionDeleteCmd())
	cmd.AddCommand(sessionEventCmd())
	cmd.AddCommand(sessionExportCmd())
	return cmd
}

func sessionCreateCmd() *cobra.Command {
	var width, height float64
	var replaces string
	cmd := &cobra.Command{
		Use:   "create <key>",
		Short: "Start a session for a title",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sess, err := apiClient.Sessions.Create(context.Background(), &client.CreateSessionRequest{
				Key:      args[0],
				Width:    width,
				Height:   height,
				Replaces: replaces,
			})
			if err != nil {
				fatal("create session", err)
			}
			if flagFmt == "table" {
				fmt.Printf("Session %s (%d titles)\n", sess.ID, len(sess.Model.Nodes))
				printGraphTable(sess.Model)
				return
			}
			output(sess, sess.ID)
		},
	}
	cmd.Flags().Float64Var(&width, "width", 800, "Viewport width")
	cmd.Flags().Float64Var(&height, "height", 600, "Viewport height")
	cmd.Flags().StringVar(&replaces, "replaces", "", "Session to discard first")
	return cmd
}

func sessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live sessions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			sessions, err := apiClient.Sessions.List(context.Background())
			if err != nil {
				fatal("list sessions", err)
			}
			if flagFmt == "table" {
				printSessionTable(sessions)
				return
			}
			output(sessions, strconv.Itoa(len(sessions)))
		},
	}
}

func sessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show the latest frame of a session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			f, err := apiClient.Sessions.Frame(context.Background(), args[0])
			if err != nil {
				fatal("get session", err)
			}
			if flagFmt == "table" {
				fmt.Printf("Tick %d, alpha %.4f, at rest: %v\n", f.Snapshot.Tick, f.Snapshot.Alpha, f.Snapshot.AtRest)
				printNodeStateTable(f.Snapshot.Nodes)
				return
			}
			output(f, strconv.FormatUint(f.Snapshot.Tick, 10))
		},
	}
}

func sessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "End a session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Sessions.Delete(context.Background(), args[0]); err != nil {
				fatal("delete session", err)
			}
			output(map[string]bool{"deleted": true}, args[0])
		},
	}
}

func sessionEventCmd() *cobra.Command {
	var ev client.Event
	cmd := &cobra.Command{
		Use:   "event <id> <type>",
		Short: "Send an interaction event (hover, drag_start, drag_move, drag_end, click, resize, focus)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			ev.Type = args[1]
			res, err := apiClient.Sessions.Send(context.Background(), args[0], &ev)
			if err != nil {
				fatal("send event", err)
			}
			if flagFmt == "table" && res.Popup != nil {
				fmt.Println(res.Popup.Heading)
				if res.Popup.Empty {
					fmt.Println(res.Popup.Message)
					return
				}
				headers := []string{"ACTOR", res.Popup.Entries[0].Primary.Title, res.Popup.Entries[0].Secondary.Title}
				rows := make([][]string, 0, len(res.Popup.Entries))
				for _, e := range res.Popup.Entries {
					rows = append(rows, []string{e.ActorName, e.Primary.Character, e.Secondary.Character})
				}
				formatTable(headers, rows)
				return
			}
			output(res, res.State.Hovered)
		},
	}
	cmd.Flags().StringVar(&ev.NodeID, "node", "", "Target node id")
	cmd.Flags().Float64Var(&ev.X, "x", 0, "Pointer x")
	cmd.Flags().Float64Var(&ev.Y, "y", 0, "Pointer y")
	cmd.Flags().Float64Var(&ev.Width, "width", 0, "Viewport width (resize)")
	cmd.Flags().Float64Var(&ev.Height, "height", 0, "Viewport height (resize)")
	return cmd
}

func sessionExportCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a session's graph with node positions to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := apiClient.Sessions.Export(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			out, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("marshalling export: %w", err)
			}

			if outputPath == "" {
				outputPath = fmt.Sprintf("actorweb-export-%s.json",
					time.Now().UTC().Format("20060102T150405Z"))
			}

			if outputPath == "-" {
				_, err = os.Stdout.Write(out)
				return err
			}

			if err := os.WriteFile(outputPath, out, 0o600); err != nil {
				return fmt.Errorf("writing export file: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Exported %d titles, %d connections to %s\n",
				data.Stats.NodeCount, data.Stats.EdgeCount, outputPath)

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: actorweb-export-<timestamp>.json, use - for stdout)")

	return cmd
}
