package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
	"github.com/BrunoXDR/project-manager-v2/internal/workflow"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	freeStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#7FB069"))
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func newGatesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gates",
		Short: "Inspect the quality gate table",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the requirements for leaving each phase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules := workflow.DefaultGateRules()
			if path := app.Config.GetString("quality-gates-file"); path != "" {
				loaded, err := workflow.LoadGateRules(path)
				if err != nil {
					return err
				}
				rules = loaded
			}
			fmt.Fprintln(cmd.OutOrStdout(), RenderGates(rules))
			return nil
		},
	}
	show.Flags().String("quality-gates-file", "", "YAML rule table (env QUALITY_GATES_FILE)")
	_ = app.Config.BindPFlag("quality-gates-file", show.Flags().Lookup("quality-gates-file"))

	cmd.AddCommand(show)
	return cmd
}

// RenderGates lays out one line per phase in lifecycle order. Phases without
// rules are shown as free passage.
func RenderGates(rules workflow.GateRules) string {
	const phaseWidth = 12

	lines := []string{
		headerStyle.Render(fmt.Sprintf("%-*s %s", phaseWidth, "PHASE", "REQUIRED TO LEAVE")),
	}
	for _, phase := range domain.PhaseOrder {
		label := cellStyle.Render(fmt.Sprintf("%-*s", phaseWidth, phase))
		reqs, ok := rules.Requirements(phase)
		if !ok || len(reqs) == 0 {
			lines = append(lines, label+" "+freeStyle.Render("free passage"))
			continue
		}
		parts := make([]string, 0, len(reqs))
		for _, req := range reqs {
			parts = append(parts, fmt.Sprintf("%s/%s", req.DocumentType, req.Status))
		}
		lines = append(lines, label+" "+cellStyle.Render(strings.Join(parts, ", ")))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
