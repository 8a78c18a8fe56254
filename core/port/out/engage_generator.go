package out

import "context"

// GenerationRequest carries one external text-generation call.
type GenerationRequest struct {
	SystemInstructions string
	Prompt             string
	Temperature        float64
	MaxTokens          int
}

// Generator is the external text-generation API. A failed or non-success
// call surfaces as apperr.GenerationUnavailable; this port does not retry.
type Generator interface {
	Generate(ctx context.Context, req *GenerationRequest) (string, error)
}
