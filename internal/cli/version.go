package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aryankumar/batchrun/internal/output"
	"github.com/aryankumar/batchrun/pkg/version"
)

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display detailed version information for batchrun",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.OutOrStdout(), viper.GetString("output"))
		},
	}

	return cmd
}

func runVersion(w io.Writer, outputFormat string) error {
	info := version.Get()

	if outputFormat == "" {
		fmt.Fprintln(w, info.String())
		return nil
	}

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	if format == output.FormatTable {
		return output.NewFormatter(format, output.WithNoColor(viper.GetBool("no-color"))).Format(w, info.Fields())
	}
	return output.NewFormatter(format).Format(w, info)
}
