package cli

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aryankumar/batchrun/internal/builtin"
	"github.com/aryankumar/batchrun/internal/executor"
	"github.com/aryankumar/batchrun/internal/output"
)

// funcInfo describes one registered function
type funcInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func newFuncsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "funcs",
		Short:   "List registered functions",
		Long:    "List the functions a job file can name in its function field.",
		Aliases: []string{"functions"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuncs(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runFuncs(w io.Writer) error {
	names := executor.Names()
	funcs := make([]funcInfo, 0, len(names))
	for _, name := range names {
		funcs = append(funcs, funcInfo{Name: name, Description: builtin.Description(name)})
	}

	format, err := output.ParseFormat(viper.GetString("output"))
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON, output.FormatJSONLines, output.FormatYAML:
		return output.NewFormatter(format).Format(w, funcs)
	default:
		return funcsTable(w, funcs, viper.GetBool("no-color"))
	}
}

func funcsTable(w io.Writer, funcs []funcInfo, noColor bool) error {
	if len(funcs) == 0 {
		fmt.Fprintln(w, "No functions registered")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Description"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	colors := output.NewColorScheme(w, noColor)
	for _, fn := range funcs {
		desc := fn.Description
		if desc == "" {
			desc = colors.Muted("-")
		}
		table.Append([]string{colors.Worker(fn.Name), desc})
	}
	table.Render()

	fmt.Fprintf(w, "\nTotal functions: %d\n", len(funcs))
	return nil
}
