package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

var _ driving.QueryService = (*QAService)(nil)

// DefaultAnswerTemperature matches the sampling used for answers when
// no other value is configured.
const DefaultAnswerTemperature = 0.2

// QAService answers questions from retrieved context and keeps
// conversation history.
type QAService struct {
	retrieval  *RetrievalService
	llm        driven.LLMService
	prompts    driven.PromptStore
	sessions   driven.SessionStore
	llmTimeout time.Duration
	chatOpts   driven.ChatOptions
}

// NewQAService creates a QA service. llm may be nil, in which case Ask
// fails with domain.ErrLLMUnavailable while Retrieve still works.
// sessions may be nil, in which case AskInSession does not persist.
func NewQAService(
	retrieval *RetrievalService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	sessions driven.SessionStore,
	llmTimeout time.Duration,
) *QAService {
	return &QAService{
		retrieval:  retrieval,
		llm:        llm,
		prompts:    prompts,
		sessions:   sessions,
		llmTimeout: llmTimeout,
		chatOpts:   driven.ChatOptions{Temperature: DefaultAnswerTemperature},
	}
}

// SetChatOptions overrides the options sent with every answer request.
func (s *QAService) SetChatOptions(opts driven.ChatOptions) {
	s.chatOpts = opts
}

// Retrieve validates the question and assembles its context.
func (s *QAService) Retrieve(ctx context.Context, req domain.QueryRequest) (*domain.RetrievalResult, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	return s.retrieval.Retrieve(ctx, req)
}

// Ask answers req and returns session with the new turn appended. The
// session passed in is not modified. A nil session starts a new one.
func (s *QAService) Ask(
	ctx context.Context, session *domain.QuerySession, req domain.QueryRequest,
) (*domain.QuerySession, *domain.QueryResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, nil, fmt.Errorf("%w: no language model configured", domain.ErrLLMUnavailable)
	}

	result, err := s.Retrieve(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.buildMessages(session, req.Question, result.Context)
	if err != nil {
		return nil, nil, err
	}

	answer, err := s.chat(ctx, messages)
	if err != nil {
		return nil, nil, err
	}

	next := cloneSession(session)
	next.Record(req.Question, answer)

	return next, &domain.QueryResponse{
		Answer:    answer,
		Context:   result.Context,
		Sources:   result.Sources(),
		SessionID: next.ID,
	}, nil
}

// AskInSession answers within the stored session sessionID. An empty or
// unknown id starts a new session; the updated session is saved.
func (s *QAService) AskInSession(
	ctx context.Context, sessionID string, req domain.QueryRequest,
) (*domain.QueryResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next, resp, err := s.Ask(ctx, session, req)
	if err != nil {
		return nil, err
	}

	if s.sessions != nil {
		if err := s.sessions.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return resp, nil
}

func (s *QAService) loadSession(ctx context.Context, id string) (*domain.QuerySession, error) {
	if id == "" {
		return domain.NewQuerySession(uuid.NewString()), nil
	}
	if s.sessions == nil {
		return domain.NewQuerySession(id), nil
	}

	session, err := s.sessions.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewQuerySession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

// buildMessages replays the history as user and assistant turns, then
// asks the question through the answer template.
func (s *QAService) buildMessages(
	session *domain.QuerySession, question, docContext string,
) ([]driven.ChatMessage, error) {
	template, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return nil, fmt.Errorf("load answer prompt: %w", err)
	}

	turns := session.Turns()
	messages := make([]driven.ChatMessage, 0, 2*len(turns)+1)
	for _, t := range turns {
		messages = append(messages,
			driven.ChatMessage{Role: driven.RoleUser, Content: t.Question},
			driven.ChatMessage{Role: driven.RoleAssistant, Content: t.Answer},
		)
	}
	messages = append(messages, driven.ChatMessage{
		Role:    driven.RoleUser,
		Content: fmt.Sprintf(template, docContext, question),
	})
	return messages, nil
}

func (s *QAService) chat(ctx context.Context, messages []driven.ChatMessage) (string, error) {
	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}

	logger.Debug("Asking %s with %d messages", s.llm.ModelName(), len(messages))
	answer, err := s.llm.Chat(ctx, messages, s.chatOpts)
	if err != nil {
		if errors.Is(err, domain.ErrLLMFailure) || errors.Is(err, domain.ErrLLMUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrLLMFailure, err)
	}
	return strings.TrimSpace(answer), nil
}

func cloneSession(session *domain.QuerySession) *domain.QuerySession {
	if session == nil {
		return domain.NewQuerySession(uuid.NewString())
	}
	return &domain.QuerySession{
		ID:        session.ID,
		History:   session.Turns(),
		CreatedAt: session.CreatedAt,
	}
}
