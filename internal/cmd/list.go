package cmd

import (
	"github.com/spf13/cobra"

	"github.com/weftci/weft/internal/config"
	"github.com/weftci/weft/internal/matrix"
	"github.com/weftci/weft/internal/output"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List declared environments",
		Long:  `List every environment the matrix declares, with its runtime, pin, and kind.`,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAndValidate(configFlag)
	if err != nil {
		return err
	}

	envs := matrix.Expand(cfg)

	tbl := output.NewTable("ENVIRONMENT", "RUNTIME", "PIN", "KIND")
	for _, env := range envs {
		pin := env.Pin
		if pin != "" {
			pin = pin + " (" + cfg.Pins[pin] + ")"
		}
		tbl.Row(output.StyleNoun.Render(env.Name), env.Runtime, pin, string(env.Kind))
	}
	output.Println(tbl.String())
	return nil
}
