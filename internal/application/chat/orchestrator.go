package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"rag-chat-api/internal/application/retrieval"
	"rag-chat-api/internal/config"
	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
	apperrors "rag-chat-api/pkg/errors"
	"rag-chat-api/pkg/logger"
	"rag-chat-api/pkg/metrics"
)

var tracer = otel.Tracer("application/chat")

const errorReplyPrefix = "I encountered an error while processing your request: "

// TurnInput 一轮对话输入
type TurnInput struct {
	WorkspaceID string
	SessionID   string
	UserID      string
	Message     string

	AgentID  string
	Provider string
	Model    string

	// SearchType 检索偏好（vector/hybrid/graph），作为工具选择提示注入
	SearchType string
}

// TurnOutput 一轮对话结果
type TurnOutput struct {
	SessionID string         `json:"session_id"`
	Content   string         `json:"content"`
	ToolCalls []ToolCallView `json:"tool_calls,omitempty"`
}

// AgentRunner 智能体执行器
type AgentRunner interface {
	Run(ctx context.Context, in *AgentInput, emit func(delta string) error) (*AgentOutput, error)
}

// Orchestrator 对话轮次编排器。
// 每轮：解析会话 -> 拼装上下文 -> 执行智能体 -> 持久化两条消息。
// 用户与助手消息总是成对落库，包括智能体失败的轮次。
type Orchestrator struct {
	sessions repository.SessionRepository
	messages repository.MessageRepository
	agents   repository.AgentRepository
	gateway  *retrieval.Gateway
	runner   AgentRunner

	cfg   config.ChatConfig
	locks *sessionLocks
}

func NewOrchestrator(
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	agents repository.AgentRepository,
	gateway *retrieval.Gateway,
	runner AgentRunner,
	cfg config.ChatConfig,
) *Orchestrator {
	if cfg.SessionTimeoutMinutes <= 0 {
		cfg.SessionTimeoutMinutes = 60
	}
	if cfg.ContextWindowMessages <= 0 {
		cfg.ContextWindowMessages = 6
	}
	return &Orchestrator{
		sessions: sessions,
		messages: messages,
		agents:   agents,
		gateway:  gateway,
		runner:   runner,
		cfg:      cfg,
		locks:    newSessionLocks(),
	}
}

// ExecuteTurn 同步执行一轮对话
func (o *Orchestrator) ExecuteTurn(ctx context.Context, in *TurnInput) (*TurnOutput, error) {
	var out *TurnOutput
	err := o.runTurn(ctx, in, nil, func(result *TurnOutput) {
		out = result
	})
	return out, err
}

// StreamTurn 流式执行一轮对话。
// 事件顺序：session -> text* -> tools? -> end；失败时以 error 事件收尾。
func (o *Orchestrator) StreamTurn(ctx context.Context, in *TurnInput, emit EmitFunc) error {
	return o.runTurn(ctx, in, emit, nil)
}

func (o *Orchestrator) runTurn(ctx context.Context, in *TurnInput, emit EmitFunc, done func(*TurnOutput)) error {
	ctx, span := tracer.Start(ctx, "Orchestrator.Turn")
	defer span.End()

	if in == nil || strings.TrimSpace(in.WorkspaceID) == "" {
		return apperrors.New(apperrors.CodeInvalidParam, "workspace_id is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return apperrors.New(apperrors.CodeInvalidParam, "message is required")
	}

	start := time.Now()
	status := "ok"
	defer func() {
		metrics.ChatTurnsTotal.WithLabelValues(in.WorkspaceID, status).Inc()
		metrics.ChatTurnDuration.WithLabelValues(in.WorkspaceID).Observe(time.Since(start).Seconds())
	}()

	session, err := o.resolveSession(ctx, in)
	if err != nil {
		status = "failed"
		return err
	}

	// 同一会话上的并发轮次串行执行
	unlock := o.locks.Lock(session.ID)
	defer unlock()

	ctx = logger.WithContext(ctx, logger.SessionIDKey, session.ID)

	if emit != nil {
		if err := emit(StreamEvent{Type: EventSession, SessionID: session.ID}); err != nil {
			status = "failed"
			return err
		}
	}

	history, err := o.messages.ListRecent(ctx, session.ID, o.cfg.ContextWindowMessages)
	if err != nil {
		status = "failed"
		return apperrors.Wrap(err, apperrors.CodePersistenceFailure, "failed to load conversation history")
	}

	userMsg := entity.NewMessage(session.ID, in.WorkspaceID, entity.RoleUser, in.Message, nil)
	if err := o.messages.Create(ctx, userMsg); err != nil {
		status = "failed"
		return apperrors.Wrap(err, apperrors.CodePersistenceFailure, "failed to persist user message")
	}

	agentIn, err := o.buildAgentInput(ctx, in, history)
	if err != nil {
		status = "failed"
		return err
	}

	var partial strings.Builder
	clientGone := false
	var emitText func(delta string) error
	if emit != nil {
		emitText = func(delta string) error {
			partial.WriteString(delta)
			if err := emit(StreamEvent{Type: EventText, Content: delta}); err != nil {
				clientGone = true
				return err
			}
			return nil
		}
	}

	agentOut, agentErr := o.runner.Run(ctx, agentIn, emitText)

	var reply string
	var toolCalls []ToolCallView
	var replyMeta json.RawMessage
	if agentErr != nil {
		status = "failed"
		logger.Error(ctx, "agent execution failed", agentErr,
			"workspace_id", in.WorkspaceID,
			"session_id", session.ID,
		)
		if (clientGone || errors.Is(agentErr, context.Canceled)) && partial.Len() > 0 {
			// 客户端中途断开：已生成的部分回答照常落库，标记为未完成
			reply = partial.String()
			replyMeta, _ = json.Marshal(map[string]any{"streamed": "incomplete"})
		} else {
			reply = errorReplyPrefix + agentErr.Error()
		}
	} else {
		reply = agentOut.Content
		toolCalls = agentOut.ToolCalls
		if len(toolCalls) > 0 {
			replyMeta, _ = json.Marshal(map[string]any{"tool_calls": toolCalls})
		}
	}

	// 失败轮次同样落库，保证会话历史完整；
	// 请求上下文可能已随客户端断开被取消，落库不受其影响。
	saveCtx := context.WithoutCancel(ctx)
	assistantMsg := entity.NewMessage(session.ID, in.WorkspaceID, entity.RoleAssistant, reply, replyMeta)
	if err := o.messages.Create(saveCtx, assistantMsg); err != nil {
		status = "failed"
		return apperrors.Wrap(err, apperrors.CodePersistenceFailure, "failed to persist assistant message")
	}

	session.ExpiresAt = time.Now().Add(o.sessionTimeout())
	if err := o.sessions.Touch(saveCtx, session); err != nil {
		logger.Warn(ctx, "failed to extend session expiry", "session_id", session.ID, "error", err.Error())
	}

	if agentErr != nil {
		if emit != nil {
			_ = emit(StreamEvent{Type: EventError, Error: agentErr.Error()})
			return nil
		}
		// 降级输出随错误一并返回，由 HTTP 边界决定呈现方式
		if done != nil {
			done(&TurnOutput{SessionID: session.ID, Content: reply})
		}
		return apperrors.Wrap(agentErr, apperrors.CodeAgentExecutionFailure, "agent execution failed")
	}

	if emit != nil {
		if len(toolCalls) > 0 {
			if err := emit(StreamEvent{Type: EventTools, ToolCalls: toolCalls}); err != nil {
				return err
			}
		}
		return emit(StreamEvent{Type: EventEnd})
	}

	if done != nil {
		done(&TurnOutput{SessionID: session.ID, Content: reply, ToolCalls: toolCalls})
	}
	return nil
}

// resolveSession 解析或创建会话。
// 指定的会话不存在或已过期时创建新会话（惰性过期）。
func (o *Orchestrator) resolveSession(ctx context.Context, in *TurnInput) (*entity.Session, error) {
	if strings.TrimSpace(in.SessionID) != "" {
		session, err := o.sessions.GetByID(ctx, in.WorkspaceID, in.SessionID)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodePersistenceFailure, "failed to load session")
		}
		if session != nil {
			return session, nil
		}
	}

	session := entity.NewSession(in.WorkspaceID, in.UserID, nil, o.sessionTimeout())
	if err := o.sessions.Create(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodePersistenceFailure, "failed to create session")
	}
	return session, nil
}

func (o *Orchestrator) buildAgentInput(ctx context.Context, in *TurnInput, history []*entity.Message) (*AgentInput, error) {
	agentIn := &AgentInput{
		Provider: in.Provider,
		Model:    in.Model,
		Prompt:   renderContext(history, in.Message),
		Tools:    retrieval.Tools(o.gateway, in.WorkspaceID),
	}

	if strings.TrimSpace(in.AgentID) != "" && o.agents != nil {
		agent, err := o.agents.GetByID(ctx, in.WorkspaceID, in.AgentID)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodePersistenceFailure, "failed to load agent")
		}
		if agent == nil || !agent.IsActive {
			return nil, apperrors.New(apperrors.CodeAgentNotFound, "agent not found")
		}
		agentIn.SystemPrompt = agent.SystemPrompt
		applyModelConfig(agentIn, agent.ModelConfig)
	}

	if hint := searchHint(in.SearchType); hint != "" {
		if agentIn.SystemPrompt != "" {
			agentIn.SystemPrompt += "\n"
		}
		agentIn.SystemPrompt += hint
	}
	return agentIn, nil
}

// searchHint 将检索偏好转成工具选择提示
func searchHint(searchType string) string {
	switch strings.TrimSpace(searchType) {
	case "vector":
		return "When retrieving context, prefer the vector_search tool."
	case "hybrid":
		return "When retrieving context, prefer the hybrid_search tool."
	case "graph":
		return "When retrieving context, prefer the graph_search tool."
	default:
		return ""
	}
}

// applyModelConfig 用智能体配置补全未显式指定的模型参数
func applyModelConfig(in *AgentInput, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var cfg struct {
		Provider    string   `json:"provider,omitempty"`
		Model       string   `json:"model,omitempty"`
		Temperature *float32 `json:"temperature,omitempty"`
		MaxTokens   *int     `json:"max_tokens,omitempty"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return
	}
	if in.Provider == "" {
		in.Provider = cfg.Provider
	}
	if in.Model == "" {
		in.Model = cfg.Model
	}
	if in.Temperature == nil {
		in.Temperature = cfg.Temperature
	}
	if in.MaxTokens == nil {
		in.MaxTokens = cfg.MaxTokens
	}
}

func (o *Orchestrator) sessionTimeout() time.Duration {
	return time.Duration(o.cfg.SessionTimeoutMinutes) * time.Minute
}
