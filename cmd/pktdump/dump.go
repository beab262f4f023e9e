package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pktdissect/pktdissect/internal/demoproto"
	"github.com/pktdissect/pktdissect/pkg/registrar"
)

func init() {
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the registrar's protocol/field/field-type catalog",
	}
	dumpCmd.AddCommand(
		&cobra.Command{
			Use:   "protocols",
			Short: "List every registered protocol",
			RunE: func(cmd *cobra.Command, args []string) error {
				return demoRegistrar().DumpProtocols(os.Stdout)
			},
		},
		&cobra.Command{
			Use:   "fields",
			Short: "List every registered protocol and field",
			RunE: func(cmd *cobra.Command, args []string) error {
				return demoRegistrar().DumpFields(os.Stdout)
			},
		},
		&cobra.Command{
			Use:   "fieldtypes",
			Short: "List the closed set of field types",
			RunE: func(cmd *cobra.Command, args []string) error {
				return demoRegistrar().DumpFieldTypes(os.Stdout)
			},
		},
	)
	rootCmd.AddCommand(dumpCmd)
}

func demoRegistrar() *registrar.Registrar {
	return registrar.Init("", func(r *registrar.Registrar) {
		demoproto.Register(r)
	}, nil)
}
