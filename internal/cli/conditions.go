package cli

import (
	"strings"

	"github.com/arthur-debert/remnant/pkg/conditions"
	"github.com/spf13/cobra"
)

func newConditionsCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conditions",
		Short: MsgConditionsShort,
		Long: `Conditions prints the table of per-application overrides: names always
included or excluded while scanning, and paths always added to or removed
from the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(global)
			if err != nil {
				return err
			}
			table, err := e.conditions()
			if err != nil {
				return err
			}
			renderer, err := e.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return renderer.RenderMarkdown(conditionsMarkdown(table))
		},
	}
}

func conditionsMarkdown(table *conditions.Table) string {
	var b strings.Builder
	b.WriteString("# Matching conditions\n\n")
	b.WriteString("| Bundle id | Include | Exclude | Always found | Never found |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, c := range table.All() {
		b.WriteString("| " + strings.Join([]string{
			"`" + c.ID + "`",
			cell(c.Include),
			cell(c.Exclude),
			cell(c.ForceInclude),
			cell(c.ForceExclude),
		}, " | ") + " |\n")
	}
	return b.String()
}

func cell(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.ReplaceAll(strings.Join(values, ", "), "|", `\|`)
}
