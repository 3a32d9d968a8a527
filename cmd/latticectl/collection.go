package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latticedb/lattice/pkg/catalog"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Create, load, unload, rename, and drop collections",
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("type")
		typ := catalog.Document
		if kind == "edge" {
			typ = catalog.Edge
		}

		v, err := openVocbase(cmd)
		if err != nil {
			return err
		}
		defer v.Close()

		col, err := v.Create(args[0], typ)
		if err != nil {
			return err
		}
		fmt.Printf("created %s (cid=%d, type=%s)\n", col.Name(), col.CID(), kind)
		return nil
	},
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every collection in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVocbase(cmd)
		if err != nil {
			return err
		}
		defer v.Close()

		for _, c := range v.Collections() {
			fmt.Printf("%-20s cid=%-6d status=%s\n", c.Name(), c.CID(), c.Status())
		}
		return nil
	},
}

var collectionDropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Drop a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVocbase(cmd)
		if err != nil {
			return err
		}
		defer v.Close()

		c, ok := v.LookupByName(args[0])
		if !ok {
			return fmt.Errorf("latticectl: collection %q not found", args[0])
		}
		if err := v.Drop(c); err != nil {
			return err
		}
		fmt.Printf("dropped %s\n", args[0])
		return nil
	},
}

var collectionLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Transition an unloaded collection back to loaded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVocbase(cmd)
		if err != nil {
			return err
		}
		defer v.Close()

		c, ok := v.LookupByName(args[0])
		if !ok {
			return fmt.Errorf("latticectl: collection %q not found", args[0])
		}
		if err := v.Load(c); err != nil {
			return err
		}
		fmt.Printf("loaded %s\n", args[0])
		return nil
	},
}

var collectionUnloadCmd = &cobra.Command{
	Use:   "unload <name>",
	Short: "Transition a loaded collection to unloaded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVocbase(cmd)
		if err != nil {
			return err
		}
		defer v.Close()

		c, ok := v.LookupByName(args[0])
		if !ok {
			return fmt.Errorf("latticectl: collection %q not found", args[0])
		}
		if err := v.Unload(c); err != nil {
			return err
		}
		fmt.Printf("unloaded %s\n", args[0])
		return nil
	},
}

var collectionRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVocbase(cmd)
		if err != nil {
			return err
		}
		defer v.Close()

		c, ok := v.LookupByName(args[0])
		if !ok {
			return fmt.Errorf("latticectl: collection %q not found", args[0])
		}
		if err := v.Rename(c, args[1]); err != nil {
			return err
		}
		fmt.Printf("renamed %s to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	collectionCreateCmd.Flags().String("type", "document", "Collection type (document, edge)")

	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionDropCmd)
	collectionCmd.AddCommand(collectionLoadCmd)
	collectionCmd.AddCommand(collectionUnloadCmd)
	collectionCmd.AddCommand(collectionRenameCmd)
}
