package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/weftci/weft/internal/config"
	"github.com/weftci/weft/internal/history"
	"github.com/weftci/weft/internal/output"
)

var limitFlag int

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent environment runs",
		RunE:  runHistory,
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "maximum entries to show")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	configPath := config.ResolveConfigPath(configFlag)
	workDir := config.WorkDir(configPath)

	store, err := history.Open(config.HistoryPath(workDir))
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(cmd.Context(), limitFlag)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		output.Println("No runs recorded yet.")
		return nil
	}

	tbl := output.NewTable("STARTED", "ENVIRONMENT", "STATUS", "DURATION")
	for _, r := range records {
		status := output.StatusStyle(r.Status).Render(r.Status)
		tbl.Row(
			r.StartedAt.Local().Format(time.DateTime),
			output.StyleNoun.Render(r.Env),
			status,
			r.Duration.Round(time.Millisecond).String(),
		)
	}
	output.Println(tbl.String())
	return nil
}
