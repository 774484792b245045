package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"relgraph/internal/graph"
)

func newInspectCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect [type...]",
		Short: "Print resolved edge definitions",
		Long: `Resolve every relationship of the given types (all types by default)
and print the resulting edge definitions. Schema inconsistencies are reported
as errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			types := args
			if len(types) == 0 {
				types = a.schema.Types()
			}
			resolver := a.store.Graph().Resolver()
			var defs []*graph.EdgeDefinition
			for _, typ := range types {
				resolved, err := resolver.ResolveType(typ)
				if err != nil {
					return err
				}
				defs = append(defs, resolved...)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(defs)
			case "text":
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TYPE\tFIELD\tKIND\tRELATED\tINVERSE\tFLAGS")
				for _, d := range defs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						d.Type, d.Key, d.Kind, d.RelatedType, inverseLabel(d), flagsLabel(d))
				}
				return w.Flush()
			}
			return fmt.Errorf("unsupported format %q", format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	return cmd
}

func inverseLabel(d *graph.EdgeDefinition) string {
	switch {
	case !d.HasInverse:
		return "null"
	case d.InverseIsImplicit:
		return "(implicit)"
	case d.InverseKind == "":
		return d.InverseKey + " (deferred)"
	}
	return fmt.Sprintf("%s (%s)", d.InverseKey, d.InverseKind)
}

func flagsLabel(d *graph.EdgeDefinition) string {
	var flags []byte
	add := func(on bool, c byte) {
		if on {
			flags = append(flags, c)
		}
	}
	add(d.IsAsync, 'a')
	add(d.IsPolymorphic, 'p')
	add(d.IsSelfReferential, 's')
	add(d.IsReflexive, 'r')
	if len(flags) == 0 {
		return "-"
	}
	return string(flags)
}
