package chat

import (
	"encoding/json"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ToolCallView 暴露给客户端的工具调用记录
type ToolCallView struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// decodeToolArguments 解析工具调用参数。
// 上游可能给出 JSON 对象文本，也可能把对象再包一层 JSON 字符串；
// 两种都接受，解析失败返回 false，由调用方静默丢弃。
func decodeToolArguments(raw string) (map[string]any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, true
	}

	var inner string
	if err := json.Unmarshal([]byte(raw), &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), &args); err == nil {
			return args, true
		}
	}
	return nil, false
}

// extractToolCalls 从助手消息中提取工具调用记录，参数不可解析的调用丢弃
func extractToolCalls(msg *schema.Message) []ToolCallView {
	if msg == nil || len(msg.ToolCalls) == 0 {
		return nil
	}
	views := make([]ToolCallView, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		name := strings.TrimSpace(tc.Function.Name)
		if name == "" {
			continue
		}
		args, ok := decodeToolArguments(tc.Function.Arguments)
		if !ok {
			continue
		}
		views = append(views, ToolCallView{Name: name, Arguments: args})
	}
	return views
}
