package mcp

import (
	"context"
	"encoding/json"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ModelsCatalogURI names the backend model catalog resource.
const ModelsCatalogURI = "aion-r://models/catalog"

type resourceFetcher func(ctx context.Context, gw Gateway) (json.RawMessage, error)

type resourceEntry struct {
	def   *sdk.Resource
	fetch resourceFetcher
}

var resourceCatalog = []resourceEntry{
	{
		def: &sdk.Resource{
			URI:         ModelsCatalogURI,
			Name:        "models-catalog",
			Title:       "AION-R Model Catalog",
			Description: "Models available on the backend AION-R API.",
			MIMEType:    "application/json",
		},
		fetch: func(ctx context.Context, gw Gateway) (json.RawMessage, error) {
			return gw.ListModels(ctx)
		},
	},
}

func lookupResource(uri string) (resourceEntry, bool) {
	for _, entry := range resourceCatalog {
		if entry.def.URI == uri {
			return entry, true
		}
	}
	return resourceEntry{}, false
}

func resourceDefinitions() []*sdk.Resource {
	defs := make([]*sdk.Resource, 0, len(resourceCatalog))
	for _, entry := range resourceCatalog {
		defs = append(defs, entry.def)
	}
	return defs
}
