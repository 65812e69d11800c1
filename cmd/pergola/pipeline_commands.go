package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pergola/internal/api"
)

func newPipelinesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pipelines",
		Short: "List pipelines and their stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload struct {
				Pipelines []api.Pipeline `json:"pipelines"`
			}
			if err := ctx.client().get("/api/pipelines", &payload); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, pipeline := range payload.Pipelines {
				fmt.Fprintf(out, "%s (%s)\n", pipeline.Name, pipeline.Slug)
				rows := make([][]string, 0, len(pipeline.Stages))
				for _, stage := range pipeline.Stages {
					rows = append(rows, []string{
						strconv.Itoa(stage.Position),
						stage.Name,
						stage.Slug,
						strconv.Itoa(stage.Probability) + "%",
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Stage", "Slug", "Probability"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
			}
			return nil
		},
	}
}

// resolveStageID maps a pipeline slug plus stage slug to a stage ID via the API.
func resolveStageID(client *apiClient, pipelineSlug, stageSlug string) (string, error) {
	var payload struct {
		Pipelines []api.Pipeline `json:"pipelines"`
	}
	if err := client.get("/api/pipelines", &payload); err != nil {
		return "", err
	}
	for _, pipeline := range payload.Pipelines {
		if pipeline.Slug != pipelineSlug {
			continue
		}
		for _, stage := range pipeline.Stages {
			if stage.Slug == stageSlug {
				return stage.ID, nil
			}
		}
		return "", fmt.Errorf("stage %q not found in pipeline %q", stageSlug, pipelineSlug)
	}
	return "", fmt.Errorf("pipeline %q not found", pipelineSlug)
}
