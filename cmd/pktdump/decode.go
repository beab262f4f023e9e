package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pktdissect/pktdissect/internal/demoproto"
	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/label"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

func init() {
	cmd := &cobra.Command{
		Use:   "decode <hex-bytes>",
		Short: "Run the Foo Protocol demo dissector against a hex-encoded message",
		Long: `decode parses its argument as hex-encoded bytes (whitespace is ignored)
and dissects them as a Foo Protocol message, printing one line per field.

Example:
  pktdump decode "5A 01 2C C0 A8 00 01 68 69 00 01 02 03 04 05 06 07 08"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(args[0])
		},
	}
	rootCmd.AddCommand(cmd)
}

func runDecode(hexInput string) error {
	raw, err := hex.DecodeString(strings.Join(strings.Fields(hexInput), ""))
	if err != nil {
		return fmt.Errorf("decode hex input: %w", err)
	}

	var foo demoproto.Handles
	r := registrar.Init("", func(r *registrar.Registrar) {
		foo = demoproto.Register(r)
	}, nil)

	buf := tvb.New(raw)
	tree, err := demoproto.Dissect(r, foo, buf)
	if err != nil {
		return fmt.Errorf("dissect: %w", err)
	}
	defer tree.Destroy()

	printVerbose("dissected %d bytes\n", len(raw))
	printTreeNode(r, tree.Root, 0)
	return nil
}

func printTreeNode(r *registrar.Registrar, node *dtree.Node, depth int) {
	for _, child := range node.Children {
		hfi, ok := r.GetNth(child.FI.HFI)
		if ok {
			label.Fill(child.FI, hfi)
			fmt.Printf("%s%s\n", strings.Repeat("  ", depth), child.FI.Representation)
		}
		printTreeNode(r, child, depth+1)
	}
}
