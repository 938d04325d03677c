package chat

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeToolArguments_NativeObject(t *testing.T) {
	args, ok := decodeToolArguments(`{"query":"refund policy","limit":5}`)
	require.True(t, ok)
	assert.Equal(t, "refund policy", args["query"])
	assert.EqualValues(t, 5, args["limit"])
}

func TestDecodeToolArguments_DoubleEncodedString(t *testing.T) {
	args, ok := decodeToolArguments(`"{\"query\":\"refund policy\"}"`)
	require.True(t, ok)
	assert.Equal(t, "refund policy", args["query"])
}

func TestDecodeToolArguments_Empty(t *testing.T) {
	args, ok := decodeToolArguments("")
	assert.True(t, ok)
	assert.Nil(t, args)
}

func TestDecodeToolArguments_Unparseable(t *testing.T) {
	_, ok := decodeToolArguments(`{not json`)
	assert.False(t, ok)

	_, ok = decodeToolArguments(`"still not an object"`)
	assert.False(t, ok)
}

func TestExtractToolCalls_DropsUnparseableSilently(t *testing.T) {
	msg := &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{Function: schema.FunctionCall{Name: "vector_search", Arguments: `{"query":"alpha"}`}},
			{Function: schema.FunctionCall{Name: "hybrid_search", Arguments: `{broken`}},
			{Function: schema.FunctionCall{Name: "", Arguments: `{}`}},
		},
	}

	views := extractToolCalls(msg)
	require.Len(t, views, 1)
	assert.Equal(t, "vector_search", views[0].Name)
	assert.Equal(t, "alpha", views[0].Arguments["query"])
}

func TestExtractToolCalls_Empty(t *testing.T) {
	assert.Nil(t, extractToolCalls(nil))
	assert.Nil(t, extractToolCalls(&schema.Message{Role: schema.Assistant}))
}
