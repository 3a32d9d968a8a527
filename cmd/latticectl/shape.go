package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/latticedb/lattice/pkg/jsonvalue"
	"github.com/latticedb/lattice/pkg/shaper"
)

var shapeCmd = &cobra.Command{
	Use:   "shape",
	Short: "Shape a JSON document and describe the resulting descriptor",
}

var shapeDescribeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Print the sid, kind, and field layout the dictionary assigns to a document",
	Long: `describe reads a single JSON document (from a file argument, or
stdin when no argument is given), shapes it against a fresh dictionary,
and prints the resulting descriptor: sid, kind, byte size, and for
Array shapes every field's attribute name and element sid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cut, _ := cmd.Flags().GetInt("short-string-cut")

		raw, err := readInput(args)
		if err != nil {
			return err
		}

		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return fmt.Errorf("latticectl: parse JSON: %w", err)
		}

		zone := jsonvalue.NewZone("latticectl")
		val, err := jsonvalue.FromGo(zone, decoded)
		if err != nil {
			return err
		}

		s := shaper.NewShaper(cut)
		sv, err := s.Shape(val)
		if err != nil {
			return err
		}

		sh, _ := s.LookupShape(sv.Sid)
		printShape(s, sh, sv)
		return nil
	},
}

func printShape(s *shaper.Shaper, sh *shaper.Shape, sv *shaper.ShapeValue) {
	fmt.Printf("sid:   %d\n", sv.Sid)
	fmt.Printf("kind:  %s\n", sh.Kind)
	fmt.Printf("fixed: %v\n", sv.Fixed)
	fmt.Printf("bytes: %d\n", sv.Size)

	if len(sh.Fields) > 0 {
		fmt.Println("fields:")
		for _, f := range sh.Fields {
			name, _ := s.LookupAttributeID(f.Aid)
			fmt.Printf("  %-20s aid=%-4d sid=%d\n", name, f.Aid, f.Sid)
		}
	}
	if sh.ElementSid != 0 {
		fmt.Printf("element sid: %d\n", sh.ElementSid)
	}
	if len(sh.ElementSids) > 0 {
		var parts []string
		for _, s := range sh.ElementSids {
			parts = append(parts, fmt.Sprintf("%d", s))
		}
		fmt.Printf("element sids: [%s]\n", strings.Join(parts, ", "))
	}
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}

func init() {
	shapeDescribeCmd.Flags().Int("short-string-cut", 32, "Byte length cutoff between ShortString and LongString shapes")
	shapeCmd.AddCommand(shapeDescribeCmd)
}
