package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"rag-chat-api/internal/infrastructure/llm"
	einoobs "rag-chat-api/internal/observability/eino"
	"rag-chat-api/pkg/metrics"
)

const DefaultMaxToolRounds = 4

// AgentInput 单轮智能体执行输入
type AgentInput struct {
	Provider     string
	Model        string
	SystemPrompt string
	// Prompt 已拼装好历史上下文的用户输入
	Prompt string

	Tools []einotool.BaseTool

	Temperature *float32
	MaxTokens   *int
}

// AgentOutput 智能体执行结果
type AgentOutput struct {
	Content   string
	ToolCalls []ToolCallView

	PromptTokens     int
	CompletionTokens int
}

// Runner 执行 ReAct 循环：模型推理 <-> 工具执行，直至模型产出最终回答。
// 流式模式下逐轮调用 Stream 并实时转发文本增量。
type Runner struct {
	factory       *llm.EinoFactory
	maxToolRounds int

	toolsNodeOnce sync.Once
	toolsNode     *compose.ToolsNode
	toolsNodeErr  error
}

func NewRunner(factory *llm.EinoFactory, maxToolRounds int) *Runner {
	if maxToolRounds <= 0 {
		maxToolRounds = DefaultMaxToolRounds
	}
	return &Runner{factory: factory, maxToolRounds: maxToolRounds}
}

// getToolsNode 获取（懒加载）Eino 标准工具执行节点。
// 工具列表按轮次动态传入（compose.WithToolList），节点本身全局复用。
func (r *Runner) getToolsNode() (*compose.ToolsNode, error) {
	r.toolsNodeOnce.Do(func() {
		r.toolsNode, r.toolsNodeErr = compose.NewToolNode(context.Background(), &compose.ToolsNodeConfig{
			Tools: nil,

			// 顺序执行，避免工具间并发写入或依赖问题
			ExecuteSequentially: true,

			// 模型幻觉调用了未注册的工具时，返回 JSON 错误让它下一轮自我修正
			UnknownToolsHandler: func(_ context.Context, name, _ string) (string, error) {
				b, _ := json.Marshal(map[string]any{
					"error": fmt.Sprintf("unknown tool: %s", strings.TrimSpace(name)),
				})
				return string(b), nil
			},
		})
	})
	return r.toolsNode, r.toolsNodeErr
}

// Run 执行一轮完整的智能体循环。
// emit 非空时走流式推理，文本增量实时回调；返回的 Content 为完整回答。
func (r *Runner) Run(ctx context.Context, in *AgentInput, emit func(delta string) error) (*AgentOutput, error) {
	if r == nil || r.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	toolsNode, err := r.getToolsNode()
	if err != nil {
		return nil, err
	}

	ctx = einoobs.WithProvider(ctx, in.Provider)

	baseModel, err := r.factory.Get(ctx, in.Provider)
	if err != nil {
		return nil, err
	}

	toolInfos := make([]*schema.ToolInfo, 0, len(in.Tools))
	for i := range in.Tools {
		info, err := in.Tools[i].Info(ctx)
		if err != nil {
			return nil, err
		}
		toolInfos = append(toolInfos, info)
	}

	chatModel := baseModel
	if len(toolInfos) > 0 {
		if tcm, ok := baseModel.(model.ToolCallingChatModel); ok {
			withTools, err := tcm.WithTools(toolInfos)
			if err == nil && withTools != nil {
				chatModel = withTools
			}
		}
	}

	messages := make([]*schema.Message, 0, 2)
	if strings.TrimSpace(in.SystemPrompt) != "" {
		messages = append(messages, schema.SystemMessage(in.SystemPrompt))
	}
	messages = append(messages, schema.UserMessage(in.Prompt))

	out := &AgentOutput{}
	opts := buildModelOptions(in)

	for round := 0; ; round++ {
		var assistant *schema.Message
		if emit != nil {
			assistant, err = r.streamRound(ctx, chatModel, messages, opts, emit)
		} else {
			assistant, err = chatModel.Generate(ctx, messages, opts...)
		}
		if err != nil {
			return nil, err
		}
		if assistant == nil {
			return nil, fmt.Errorf("empty llm response")
		}

		if assistant.ResponseMeta != nil && assistant.ResponseMeta.Usage != nil {
			out.PromptTokens += assistant.ResponseMeta.Usage.PromptTokens
			out.CompletionTokens += assistant.ResponseMeta.Usage.CompletionTokens
		}

		messages = append(messages, assistant)

		if len(assistant.ToolCalls) == 0 {
			out.Content = strings.TrimSpace(assistant.Content)
			return out, nil
		}
		if round >= r.maxToolRounds {
			return nil, fmt.Errorf("too many tool rounds: %d", round)
		}

		out.ToolCalls = append(out.ToolCalls, extractToolCalls(assistant)...)

		toolStart := time.Now()
		toolMsgs, err := toolsNode.Invoke(ctx, assistant, compose.WithToolList(in.Tools...))
		observeToolCalls(assistant, toolStart, err)
		if err != nil {
			return nil, err
		}
		messages = append(messages, toolMsgs...)
	}
}

// streamRound 流式执行一轮模型调用，转发文本增量并聚合完整消息
func (r *Runner) streamRound(ctx context.Context, chatModel model.BaseChatModel, messages []*schema.Message, opts []model.Option, emit func(delta string) error) (*schema.Message, error) {
	reader, err := chatModel.Stream(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	chunks := make([]*schema.Message, 0, 16)
	for {
		msg, recvErr := reader.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return nil, recvErr
		}
		chunks = append(chunks, msg)

		// 工具调用轮次的增量不含文本；有文本才转发
		if msg.Content != "" {
			if err := emit(msg.Content); err != nil {
				return nil, err
			}
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("empty llm stream")
	}
	return schema.ConcatMessages(chunks)
}

func buildModelOptions(in *AgentInput) []model.Option {
	opts := make([]model.Option, 0, 3)
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	return opts
}

func observeToolCalls(assistant *schema.Message, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	elapsed := time.Since(start).Seconds()
	for _, tc := range assistant.ToolCalls {
		name := strings.TrimSpace(tc.Function.Name)
		if name == "" {
			continue
		}
		metrics.ToolCallsTotal.WithLabelValues(name, status).Inc()
		metrics.ToolCallDuration.WithLabelValues(name).Observe(elapsed)
	}
}
