package cmd

import (
	"github.com/spf13/cobra"

	"github.com/weftci/weft/internal/config"
	"github.com/weftci/weft/internal/output"
)

// NewVetCmd creates the vet command.
func NewVetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate the weft configuration file.

Checks performed:
  1. Config file exists at the resolved path
  2. Config file is syntactically valid YAML
  3. Every pin label referenced by the matrix is declared
  4. Exclusions match generated environment names
  5. The release index URL has a supported scheme

The config path is resolved using precedence:
  --config flag > WEFT_CONFIG env > ./weft.yaml`,
		RunE: runVet,
	}
}

func runVet(cmd *cobra.Command, args []string) error {
	configPath := config.ResolveConfigPath(configFlag)

	output.Debug("validating config", "path", configPath)

	if _, err := config.LoadAndValidate(configFlag); err != nil {
		return err
	}

	output.Println("Configuration is valid: " + configPath)
	return nil
}
