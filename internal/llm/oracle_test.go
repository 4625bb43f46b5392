package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLMClient struct {
	content string
	err     error
}

func (f *fakeLLMClient) Complete(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	return nil, fmt.Errorf("not used in oracle tests")
}

func (f *fakeLLMClient) CompleteWithRetry(ctx context.Context, messages []ChatMessage, maxRetries int) (*ChatResponse, error) {
	return nil, fmt.Errorf("not used in oracle tests")
}

func (f *fakeLLMClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.content, f.err
}

func (f *fakeLLMClient) ParseJSONResponse(content string, target interface{}) error {
	return json.Unmarshal([]byte(content), target)
}

var _ LLMClient = (*fakeLLMClient)(nil)

func TestOracle_Query_WellFormedResponse(t *testing.T) {
	client := &fakeLLMClient{content: `{"observation":"price rising","reasoning":"momentum","conclusion":"buy","confidence":0.82}`}
	o := NewOracle(client)

	resp := o.Query(context.Background(), "system", "user")

	assert.Equal(t, "price rising", resp.Observation)
	assert.Equal(t, 0.82, resp.Confidence)
}

func TestOracle_Query_MalformedJSONFallsBack(t *testing.T) {
	client := &fakeLLMClient{content: "not json at all"}
	o := NewOracle(client)

	resp := o.Query(context.Background(), "system", "user")

	require.Equal(t, parseFailureReasoning, resp.Reasoning)
	assert.Equal(t, 0.3, resp.Confidence)
}

func TestOracle_Query_OutOfRangeConfidenceFallsBack(t *testing.T) {
	client := &fakeLLMClient{content: `{"observation":"x","reasoning":"y","conclusion":"z","confidence":1.5}`}
	o := NewOracle(client)

	resp := o.Query(context.Background(), "system", "user")

	assert.Equal(t, parseFailureReasoning, resp.Reasoning)
	assert.Equal(t, 0.3, resp.Confidence)
}

func TestOracle_Query_TransportErrorDoesNotPropagate(t *testing.T) {
	client := &fakeLLMClient{err: fmt.Errorf("connection reset")}
	o := NewOracle(client)

	resp := o.Query(context.Background(), "system", "user")

	assert.Equal(t, 0.3, resp.Confidence)
	assert.Contains(t, resp.Reasoning, "oracle call failed")
}
