package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ashureev/kneeoa/internal/domain"
	"github.com/ashureev/kneeoa/internal/render"
)

var (
	renderWidth int
	renderRaw   bool
)

var renderCmd = &cobra.Command{
	Use:   "render [agent...]",
	Short: "Print the multi-agent therapy plans",
	Long: `Render one or more agent plans as markdown. Agents are exercise,
surgical_pharma, nutrition_psychology and clinical_integration; all four are
printed in reveal order when none is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		agents, err := parseAgents(args)
		if err != nil {
			return err
		}
		store, err := openContent()
		if err != nil {
			return err
		}

		var renderer *glamour.TermRenderer
		if !renderRaw {
			renderer, err = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(renderWidth),
			)
			if err != nil {
				return fmt.Errorf("create renderer: %w", err)
			}
		}

		for _, agent := range agents {
			blocks, err := render.Agent(store, agent)
			if err != nil {
				return fmt.Errorf("render %s: %w", agent, err)
			}
			if err := writePlan(cmd.OutOrStdout(), renderer, agent, blocks); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().IntVar(&renderWidth, "width", 80, "Word wrap width")
	renderCmd.Flags().BoolVar(&renderRaw, "raw", false, "Print markdown without terminal styling")
}

func parseAgents(args []string) ([]domain.Agent, error) {
	if len(args) == 0 {
		return domain.Agents, nil
	}
	agents := make([]domain.Agent, 0, len(args))
	for _, arg := range args {
		agent := domain.Agent(arg)
		if !agent.Valid() {
			return nil, fmt.Errorf("unknown agent %q", arg)
		}
		agents = append(agents, agent)
	}
	return agents, nil
}

// planMarkdown joins the blocks of one stage under its title.
func planMarkdown(agent domain.Agent, blocks []render.Block) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", render.AgentTitle(agent))
	for _, block := range blocks {
		fmt.Fprintf(&b, "**%s**\n\n%s\n\n", block.Agent, block.Markdown)
	}
	return b.String()
}

func writePlan(w io.Writer, renderer *glamour.TermRenderer, agent domain.Agent, blocks []render.Block) error {
	md := planMarkdown(agent, blocks)
	if renderer == nil {
		_, err := io.WriteString(w, md)
		return err
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
