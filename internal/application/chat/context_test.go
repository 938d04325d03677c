package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"rag-chat-api/internal/domain/entity"
)

func TestRenderContext_NoHistory(t *testing.T) {
	got := renderContext(nil, "  What is the refund policy?  ")
	assert.Equal(t, "What is the refund policy?", got)
}

func TestRenderContext_WithHistory(t *testing.T) {
	history := []*entity.Message{
		{Role: entity.RoleUser, Content: "Hi"},
		{Role: entity.RoleAssistant, Content: "Hello! How can I help?"},
	}

	got := renderContext(history, "What is the refund policy?")
	want := "Previous conversation:\n" +
		"user: Hi\n" +
		"assistant: Hello! How can I help?\n" +
		"\nCurrent question: What is the refund policy?"
	assert.Equal(t, want, got)
}

func TestRenderContext_PreservesOrder(t *testing.T) {
	history := make([]*entity.Message, 0, 6)
	for i := 0; i < 6; i++ {
		role := entity.RoleUser
		if i%2 == 1 {
			role = entity.RoleAssistant
		}
		history = append(history, &entity.Message{Role: role, Content: fmt.Sprintf("msg-%d", i)})
	}

	got := renderContext(history, "next")
	// 历史按传入顺序展开，最旧在前
	assert.Regexp(t, `(?s)msg-0.*msg-1.*msg-2.*msg-3.*msg-4.*msg-5`, got)
	assert.Contains(t, got, "Current question: next")
}
