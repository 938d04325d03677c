// Package chat 实现对话轮次编排：会话解析、上下文拼装、智能体执行与持久化
package chat

// EventType SSE 事件类型
type EventType string

const (
	EventSession EventType = "session"
	EventText    EventType = "text"
	EventTools   EventType = "tools"
	EventEnd     EventType = "end"
	EventError   EventType = "error"
)

// StreamEvent 对话流式事件
// 事件顺序：session -> text* -> tools? -> end|error
type StreamEvent struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Content   string         `json:"content,omitempty"`
	ToolCalls []ToolCallView `json:"tool_calls,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// EmitFunc 事件回调，返回 error 表示客户端已断开
type EmitFunc func(event StreamEvent) error
