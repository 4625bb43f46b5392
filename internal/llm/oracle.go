package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Response is the shape every Reasoner-backed plugin requests from the
// text-completion oracle: an opaque JSON object with these four fields.
// The oracle itself (the HTTP call to a completion endpoint) is treated
// as an external collaborator — Oracle only shapes the request/response
// contract around whichever LLMClient is configured.
type Response struct {
	Observation string  `json:"observation"`
	Reasoning   string  `json:"reasoning"`
	Conclusion  string  `json:"conclusion"`
	Confidence  float64 `json:"confidence"`
}

// parseFailureReasoning is the fixed reasoning text a malformed oracle
// response is reported with; plugins must never propagate the parse
// error itself to the swarm.
const parseFailureReasoning = "response parse failed"

// parseFailureConfidence is the confidence a structured fallback carries
// when the oracle's reply could not be parsed into a Response.
const parseFailureConfidence = 0.3

// Oracle asks a role-specialized prompt of an LLMClient and returns a
// structured Response, falling back to a low-confidence placeholder on
// any parse failure rather than surfacing the error.
type Oracle struct {
	client LLMClient
}

// NewOracle wraps an existing LLMClient (Client or FallbackClient) with
// the Response-shaped reasoning contract.
func NewOracle(client LLMClient) *Oracle {
	return &Oracle{client: client}
}

// Query sends systemPrompt + userPrompt and parses the reply as a
// Response. A malformed or non-JSON reply yields the structured fallback
// defined by the reasoner contract instead of an error.
func (o *Oracle) Query(ctx context.Context, systemPrompt, userPrompt string) Response {
	content, err := o.client.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	if err != nil {
		return fallbackResponse(fmt.Sprintf("oracle call failed: %v", err))
	}

	var resp Response
	if err := o.client.ParseJSONResponse(content, &resp); err != nil {
		return fallbackResponse(parseFailureReasoning)
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return fallbackResponse(parseFailureReasoning)
	}

	return resp
}

func fallbackResponse(reasoning string) Response {
	return Response{
		Reasoning:  reasoning,
		Confidence: parseFailureConfidence,
	}
}
