package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticedb/lattice/pkg/catalog"
	"github.com/latticedb/lattice/pkg/config"
	"github.com/latticedb/lattice/pkg/log"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "latticectl",
	Short: "Administrative CLI for a lattice database directory",
	Long: `latticectl operates directly on a database's on-disk catalog:
creating and inspecting collections. It also describes the shape a
fresh dictionary assigns to a JSON document and runs ad hoc skiplist
range queries over keys given on the command line.

It talks to the engine in-process; there is no server to connect to.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("latticectl version %s (%s)\n", Version, Commit))

	rootCmd.PersistentFlags().String("data-dir", "./data", "Database directory")
	rootCmd.PersistentFlags().String("config", "", "Path to a defaults YAML file (optional)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(databaseCmd)
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(shapeCmd)
	rootCmd.AddCommand(indexCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOut})
}

// openVocbase opens the catalog rooted at the --data-dir flag,
// applying defaults from --config when given. Callers must Close the
// returned Vocbase.
func openVocbase(cmd *cobra.Command) (*catalog.Vocbase, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	configPath, _ := cmd.Flags().GetString("config")

	defaults := catalog.Defaults{}
	if configPath != "" {
		f, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		defaults = f.CatalogDefaults()
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("latticectl: create data dir: %w", err)
	}

	return catalog.Open(dataDir, defaults)
}
