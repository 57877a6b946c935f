package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
	"github.com/KaramelBytes/datadash-cli/internal/report"
	"github.com/KaramelBytes/datadash-cli/internal/utils"
)

var sampleJSON bool

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Show the bundled sample analysis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res := analysis.Sample()
		if sampleJSON {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		return report.Render(cmd.OutOrStdout(), report.View{
			UsingSample: true,
			Result:      res,
			MaxRows:     currentConfig().PreviewRows,
		})
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().BoolVar(&sampleJSON, "json", false, "print the sample result as JSON")
}
