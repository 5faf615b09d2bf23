package mcp

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ToolRunInference = "run_inference"
	ToolDataAnalysis = "data_analysis"
)

// DefaultTools returns the tools served by aionr2, in the order tools/list publishes them.
func DefaultTools() []*Tool {
	return []*Tool{
		{
			Definition: &sdk.Tool{
				Name:        ToolRunInference,
				Title:       "Run Inference",
				Description: "Runs AI inference by calling the backend AION-R API.",
				InputSchema: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"model": {
							Type:        "string",
							Description: "Identifier of the model to run.",
						},
						"prompt": {
							Type:        "string",
							Description: "Prompt passed to the model.",
						},
						"params": {
							Type:        "object",
							Description: "Optional model parameters forwarded verbatim.",
						},
					},
					Required: []string{"model", "prompt"},
				},
			},
			Invoke: runInference,
		},
		{
			Definition: &sdk.Tool{
				Name:        ToolDataAnalysis,
				Title:       "Data Analysis",
				Description: "Runs data analysis by calling the backend AION-R API.",
				InputSchema: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"data": {
							Description: "Dataset to analyze, any JSON value.",
						},
						"ops": {
							Type:        "array",
							Description: "Analysis operations to apply, in order.",
						},
					},
					Required: []string{"data", "ops"},
				},
			},
			Invoke: dataAnalysis,
		},
	}
}

// NewDefaultRegistry builds a registry holding DefaultTools.
func NewDefaultRegistry() (*Registry, error) {
	return NewRegistry(DefaultTools()...)
}

func runInference(ctx context.Context, gw Gateway, inputs map[string]json.RawMessage) (json.RawMessage, error) {
	var model, prompt string
	if err := json.Unmarshal(inputs["model"], &model); err != nil {
		return nil, invalidParams(ToolRunInference, "missing or invalid 'model' field")
	}
	if err := json.Unmarshal(inputs["prompt"], &prompt); err != nil {
		return nil, invalidParams(ToolRunInference, "missing or invalid 'prompt' field")
	}
	params := inputs["params"]
	if isNull(params) {
		params = nil
	}
	return gw.RunInference(ctx, model, prompt, params)
}

func dataAnalysis(ctx context.Context, gw Gateway, inputs map[string]json.RawMessage) (json.RawMessage, error) {
	return gw.DataAnalysis(ctx, inputs["data"], inputs["ops"])
}
