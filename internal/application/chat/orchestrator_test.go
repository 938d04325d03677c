package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-api/internal/config"
	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
	apperrors "rag-chat-api/pkg/errors"
)

type fakeSessionRepo struct {
	sessions map[string]*entity.Session
	created  []*entity.Session
	getErr   error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *entity.Session) error {
	f.sessions[s.ID] = s
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, workspaceID, id string) (*entity.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[id]
	if !ok || s.WorkspaceID != workspaceID {
		return nil, nil
	}
	if s.Expired(time.Now()) {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSessionRepo) Touch(_ context.Context, s *entity.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) ListByWorkspace(context.Context, string, repository.Pagination) (*repository.PagedResult[*entity.Session], error) {
	return nil, nil
}

func (f *fakeSessionRepo) DeleteExpired(context.Context, string) (int64, error) { return 0, nil }

type fakeMessageRepo struct {
	messages  []*entity.Message
	createErr error
	history   []*entity.Message
}

func (f *fakeMessageRepo) Create(_ context.Context, m *entity.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeMessageRepo) ListRecent(_ context.Context, _ string, limit int) ([]*entity.Message, error) {
	if len(f.history) > limit {
		return f.history[len(f.history)-limit:], nil
	}
	return f.history, nil
}

func (f *fakeMessageRepo) ListBySession(context.Context, string, repository.Pagination) (*repository.PagedResult[*entity.Message], error) {
	return nil, nil
}

type fakeAgentRepo struct {
	agent *entity.Agent
}

func (f *fakeAgentRepo) Create(context.Context, *entity.Agent) error { return nil }
func (f *fakeAgentRepo) GetByID(_ context.Context, workspaceID, id string) (*entity.Agent, error) {
	if f.agent != nil && f.agent.ID == id && f.agent.WorkspaceID == workspaceID {
		return f.agent, nil
	}
	return nil, nil
}
func (f *fakeAgentRepo) Update(context.Context, *entity.Agent) error       { return nil }
func (f *fakeAgentRepo) Delete(context.Context, string, string) error      { return nil }
func (f *fakeAgentRepo) ListByWorkspace(context.Context, string, repository.Pagination) (*repository.PagedResult[*entity.Agent], error) {
	return nil, nil
}

type fakeRunner struct {
	out       *AgentOutput
	err       error
	gotPrompt string
	gotSystem string
	streamed  []string
}

func (f *fakeRunner) Run(_ context.Context, in *AgentInput, emit func(delta string) error) (*AgentOutput, error) {
	f.gotPrompt = in.Prompt
	f.gotSystem = in.SystemPrompt
	if f.err != nil {
		return nil, f.err
	}
	if emit != nil {
		for _, d := range []string{"Hello", ", world"} {
			f.streamed = append(f.streamed, d)
			if err := emit(d); err != nil {
				return nil, err
			}
		}
	}
	return f.out, nil
}

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{SessionTimeoutMinutes: 60, ContextWindowMessages: 6}
}

func newTestOrchestrator(sessions *fakeSessionRepo, messages *fakeMessageRepo, agents *fakeAgentRepo, runner *fakeRunner) *Orchestrator {
	return NewOrchestrator(sessions, messages, agents, nil, runner, testChatConfig())
}

func TestExecuteTurn_CreatesSessionAndPersistsBothMessages(t *testing.T) {
	sessions := newFakeSessionRepo()
	messages := &fakeMessageRepo{}
	runner := &fakeRunner{out: &AgentOutput{Content: "Hello, world"}}
	o := newTestOrchestrator(sessions, messages, &fakeAgentRepo{}, runner)

	out, err := o.ExecuteTurn(context.Background(), &TurnInput{
		WorkspaceID: "ws1",
		Message:     "hi there",
	})
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, "Hello, world", out.Content)

	require.Len(t, sessions.created, 1)
	require.Len(t, messages.messages, 2)
	assert.Equal(t, entity.RoleUser, messages.messages[0].Role)
	assert.Equal(t, "hi there", messages.messages[0].Content)
	assert.Equal(t, entity.RoleAssistant, messages.messages[1].Role)
	assert.Equal(t, "Hello, world", messages.messages[1].Content)
}

func TestExecuteTurn_ReusesLiveSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	live := entity.NewSession("ws1", "", nil, time.Hour)
	sessions.sessions[live.ID] = live

	runner := &fakeRunner{out: &AgentOutput{Content: "ok"}}
	o := newTestOrchestrator(sessions, &fakeMessageRepo{}, &fakeAgentRepo{}, runner)

	out, err := o.ExecuteTurn(context.Background(), &TurnInput{
		WorkspaceID: "ws1",
		SessionID:   live.ID,
		Message:     "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, live.ID, out.SessionID)
	assert.Empty(t, sessions.created)
}

func TestExecuteTurn_ExpiredSessionGetsReplaced(t *testing.T) {
	sessions := newFakeSessionRepo()
	expired := entity.NewSession("ws1", "", nil, -time.Minute)
	sessions.sessions[expired.ID] = expired

	runner := &fakeRunner{out: &AgentOutput{Content: "ok"}}
	o := newTestOrchestrator(sessions, &fakeMessageRepo{}, &fakeAgentRepo{}, runner)

	out, err := o.ExecuteTurn(context.Background(), &TurnInput{
		WorkspaceID: "ws1",
		SessionID:   expired.ID,
		Message:     "hi",
	})
	require.NoError(t, err)
	assert.NotEqual(t, expired.ID, out.SessionID)
	require.Len(t, sessions.created, 1)
}

func TestExecuteTurn_AgentFailureStillPersistsAssistantMessage(t *testing.T) {
	sessions := newFakeSessionRepo()
	messages := &fakeMessageRepo{}
	runner := &fakeRunner{err: errors.New("llm provider timeout")}
	o := newTestOrchestrator(sessions, messages, &fakeAgentRepo{}, runner)

	_, err := o.ExecuteTurn(context.Background(), &TurnInput{
		WorkspaceID: "ws1",
		Message:     "hi",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAgentExecutionFailure))

	require.Len(t, messages.messages, 2)
	assert.Equal(t, entity.RoleAssistant, messages.messages[1].Role)
	assert.Contains(t, messages.messages[1].Content, "I encountered an error while processing your request:")
	assert.Contains(t, messages.messages[1].Content, "llm provider timeout")
}

func TestExecuteTurn_PersistenceFailure(t *testing.T) {
	sessions := newFakeSessionRepo()
	messages := &fakeMessageRepo{createErr: errors.New("postgres down")}
	runner := &fakeRunner{out: &AgentOutput{Content: "ok"}}
	o := newTestOrchestrator(sessions, messages, &fakeAgentRepo{}, runner)

	_, err := o.ExecuteTurn(context.Background(), &TurnInput{
		WorkspaceID: "ws1",
		Message:     "hi",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodePersistenceFailure))
}

func TestExecuteTurn_InvalidInput(t *testing.T) {
	o := newTestOrchestrator(newFakeSessionRepo(), &fakeMessageRepo{}, &fakeAgentRepo{}, &fakeRunner{})

	_, err := o.ExecuteTurn(context.Background(), &TurnInput{WorkspaceID: "", Message: "hi"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))

	_, err = o.ExecuteTurn(context.Background(), &TurnInput{WorkspaceID: "ws1", Message: "   "})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

func TestExecuteTurn_ContextWindowLimitsHistory(t *testing.T) {
	messages := &fakeMessageRepo{}
	for i := 0; i < 50; i++ {
		role := entity.RoleUser
		if i%2 == 1 {
			role = entity.RoleAssistant
		}
		messages.history = append(messages.history, &entity.Message{Role: role, Content: "old"})
	}

	runner := &fakeRunner{out: &AgentOutput{Content: "ok"}}
	o := newTestOrchestrator(newFakeSessionRepo(), messages, &fakeAgentRepo{}, runner)

	_, err := o.ExecuteTurn(context.Background(), &TurnInput{WorkspaceID: "ws1", Message: "new question"})
	require.NoError(t, err)

	// 6 条历史 + 当前问题
	assert.Contains(t, runner.gotPrompt, "Previous conversation:")
	assert.Equal(t, 6, strings.Count(runner.gotPrompt, ": old"))
	assert.Contains(t, runner.gotPrompt, "Current question: new question")
}

func TestStreamTurn_EventSequence(t *testing.T) {
	sessions := newFakeSessionRepo()
	runner := &fakeRunner{out: &AgentOutput{
		Content:   "Hello, world",
		ToolCalls: []ToolCallView{{Name: "vector_search", Arguments: map[string]any{"query": "q"}}},
	}}
	o := newTestOrchestrator(sessions, &fakeMessageRepo{}, &fakeAgentRepo{}, runner)

	var events []StreamEvent
	err := o.StreamTurn(context.Background(), &TurnInput{WorkspaceID: "ws1", Message: "hi"}, func(e StreamEvent) error {
		events = append(events, e)
		return nil
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(events), 4)
	assert.Equal(t, EventSession, events[0].Type)
	assert.NotEmpty(t, events[0].SessionID)
	assert.Equal(t, EventText, events[1].Type)
	assert.Equal(t, "Hello", events[1].Content)
	assert.Equal(t, EventTools, events[len(events)-2].Type)
	assert.Equal(t, EventEnd, events[len(events)-1].Type)
}

func TestStreamTurn_ErrorEventOnAgentFailure(t *testing.T) {
	messages := &fakeMessageRepo{}
	runner := &fakeRunner{err: errors.New("boom")}
	o := newTestOrchestrator(newFakeSessionRepo(), messages, &fakeAgentRepo{}, runner)

	var events []StreamEvent
	err := o.StreamTurn(context.Background(), &TurnInput{WorkspaceID: "ws1", Message: "hi"}, func(e StreamEvent) error {
		events = append(events, e)
		return nil
	})
	// 流式模式下错误通过 error 事件传达，不再返回 error
	require.NoError(t, err)

	last := events[len(events)-1]
	assert.Equal(t, EventError, last.Type)
	assert.Contains(t, last.Error, "boom")

	// 失败轮次也要成对落库
	require.Len(t, messages.messages, 2)
}

func TestStreamTurn_ClientDisconnectPersistsPartialResponse(t *testing.T) {
	messages := &fakeMessageRepo{}
	runner := &fakeRunner{out: &AgentOutput{Content: "Hello, world"}}
	o := newTestOrchestrator(newFakeSessionRepo(), messages, &fakeAgentRepo{}, runner)

	delivered := 0
	err := o.StreamTurn(context.Background(), &TurnInput{WorkspaceID: "ws1", Message: "hi"}, func(e StreamEvent) error {
		if e.Type == EventText {
			delivered++
			if delivered > 1 {
				return errors.New("write: broken pipe")
			}
		}
		return nil
	})
	require.NoError(t, err)

	// 断开前已生成的部分回答照常落库，而非错误占位文本
	require.Len(t, messages.messages, 2)
	got := messages.messages[1]
	assert.Equal(t, entity.RoleAssistant, got.Role)
	assert.Equal(t, "Hello, world", got.Content)
	assert.NotContains(t, got.Content, "I encountered an error")
	assert.Contains(t, string(got.Metadata), "incomplete")
}

func TestStreamTurn_CanceledContextStillPersistsPartial(t *testing.T) {
	messages := &fakeMessageRepo{}
	runner := &fakeRunner{out: &AgentOutput{Content: "Hello, world"}}
	o := newTestOrchestrator(newFakeSessionRepo(), messages, &fakeAgentRepo{}, runner)

	ctx, cancel := context.WithCancel(context.Background())
	err := o.StreamTurn(ctx, &TurnInput{WorkspaceID: "ws1", Message: "hi"}, func(e StreamEvent) error {
		if e.Type == EventText {
			cancel()
			return context.Canceled
		}
		return nil
	})
	require.NoError(t, err)

	require.Len(t, messages.messages, 2)
	assert.Equal(t, "Hello", messages.messages[1].Content)
	assert.Contains(t, string(messages.messages[1].Metadata), "incomplete")
}

func TestExecuteTurn_AgentSystemPromptApplied(t *testing.T) {
	agent := entity.NewAgent("ws1", "support", "You are a support agent.")
	runner := &fakeRunner{out: &AgentOutput{Content: "ok"}}
	o := newTestOrchestrator(newFakeSessionRepo(), &fakeMessageRepo{}, &fakeAgentRepo{agent: agent}, runner)

	_, err := o.ExecuteTurn(context.Background(), &TurnInput{
		WorkspaceID: "ws1",
		AgentID:     agent.ID,
		Message:     "hi",
	})
	require.NoError(t, err)
}

func TestExecuteTurn_SearchTypeHintInjected(t *testing.T) {
	runner := &fakeRunner{out: &AgentOutput{Content: "ok"}}
	o := newTestOrchestrator(newFakeSessionRepo(), &fakeMessageRepo{}, &fakeAgentRepo{}, runner)

	_, err := o.ExecuteTurn(context.Background(), &TurnInput{
		WorkspaceID: "ws1",
		Message:     "hi",
		SearchType:  "graph",
	})
	require.NoError(t, err)
	assert.Contains(t, runner.gotSystem, "graph_search")
}

func TestExecuteTurn_UnknownAgent(t *testing.T) {
	o := newTestOrchestrator(newFakeSessionRepo(), &fakeMessageRepo{}, &fakeAgentRepo{}, &fakeRunner{out: &AgentOutput{Content: "ok"}})

	_, err := o.ExecuteTurn(context.Background(), &TurnInput{
		WorkspaceID: "ws1",
		AgentID:     "missing",
		Message:     "hi",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAgentNotFound))
}
