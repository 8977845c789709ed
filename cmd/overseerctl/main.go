// overseerctl inspects an agent's local segment store: raw segment sizes
// and the decoded task snapshot.
package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"overseer/internal/agent"
	"overseer/internal/persistence/segmentdb"
	"overseer/internal/sim/tuning"
)

var dbPath string

func main() {
	root := &cobra.Command{
		Use:           "overseerctl",
		Short:         "inspect an overseer agent's persisted state",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "./data/segments.db", "segment store path")
	root.AddCommand(segmentsCmd(), snapshotCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func segmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "list stored memory segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := segmentdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			infos, err := store.ListSegments()
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"ID", "Size", "Active", "Updated"})
			for _, info := range infos {
				t.AppendRow(table.Row{info.ID, info.Size, info.Active, info.UpdatedAt})
			}
			t.Render()
			return nil
		},
	}
}

func snapshotCmd() *cobra.Command {
	var tuningPath string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "decode and print the task snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := tuning.Default()
			if tuningPath != "" {
				loaded, err := tuning.Load(tuningPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			store, err := segmentdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			var parts []string
			for _, seg := range cfg.ComponentSegments {
				data, err := store.ReadRaw(seg)
				if err != nil {
					return err
				}
				if data != "" {
					parts = append(parts, data)
				}
			}
			if len(parts) == 0 {
				fmt.Println("no snapshot stored")
				return nil
			}
			info, err := agent.InspectSnapshot(parts)
			if err != nil {
				return err
			}

			fmt.Printf("snapshot v%d from tick %d: %d entities\n", info.Version, info.Tick, info.Entities)
			printTasks("directives", info.Directives)
			printTasks("missions", info.Missions)
			printTasks("jobs", info.Jobs)
			printTasks("regions", info.Regions)
			printTasks("units", info.Units)
			return nil
		},
	}
	cmd.Flags().StringVar(&tuningPath, "tuning", "", "tuning.yaml path")
	return cmd
}

func printTasks(title string, tasks []agent.SnapshotTask) {
	if len(tasks) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Marker", "Kind", "Detail"})
	for _, task := range tasks {
		t.AppendRow(table.Row{task.Marker, task.Kind, task.Detail})
	}
	t.Render()
}
