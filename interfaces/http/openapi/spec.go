// Package openapi dispatches HTTP requests to handlers by the operationId of
// the matching OpenAPI operation, validating requests and optionally responses
// against the embedded document.
package openapi

import (
	_ "embed"
)

//go:embed openapi.yaml
var document []byte

// Document returns the embedded OpenAPI document
func Document() []byte {
	out := make([]byte, len(document))
	copy(out, document)
	return out
}

// Operation ids of the recipe API
const (
	OpListRecipes   = "listRecipes"
	OpCreateRecipe  = "createRecipe"
	OpGetRecipe     = "getRecipe"
	OpReplaceRecipe = "replaceRecipe"
	OpDeleteRecipe  = "deleteRecipe"
	OpListTags      = "listTags"
)
