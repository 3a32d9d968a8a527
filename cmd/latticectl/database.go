package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Manage the database directory rooted at --data-dir",
}

var databaseInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create (or reopen) the catalog store under --data-dir",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVocbase(cmd)
		if err != nil {
			return err
		}
		defer v.Close()

		fmt.Printf("database initialized at %s\n", v.Path)
		return nil
	},
}

var databaseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the database path, collection count, and each collection's status",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVocbase(cmd)
		if err != nil {
			return err
		}
		defer v.Close()

		collections := v.Collections()
		fmt.Printf("path:        %s\n", v.Path)
		fmt.Printf("collections: %d\n", len(collections))
		for _, c := range collections {
			fmt.Printf("  %-20s cid=%d status=%s\n", c.Name(), c.CID(), c.Status())
		}
		return nil
	},
}

func init() {
	databaseCmd.AddCommand(databaseInitCmd)
	databaseCmd.AddCommand(databaseStatusCmd)
}
