package chat

import (
	"strings"

	"rag-chat-api/internal/domain/entity"
)

// renderContext 将历史消息与当前问题拼装为模型输入。
// 历史按时间升序逐条以角色前缀展开；无历史时只保留当前问题。
func renderContext(history []*entity.Message, current string) string {
	current = strings.TrimSpace(current)
	if len(history) == 0 {
		return current
	}

	var sb strings.Builder
	sb.WriteString("Previous conversation:\n")
	for _, m := range history {
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(strings.TrimSpace(m.Content))
		sb.WriteString("\n")
	}
	sb.WriteString("\nCurrent question: ")
	sb.WriteString(current)
	return sb.String()
}
