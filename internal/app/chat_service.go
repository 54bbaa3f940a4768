package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"ragineer/internal/ai"
	"ragineer/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageEmpty    = errors.New("message content is empty")
)

const sessionTitleLimit = 50

const systemPromptTemplate = `You are RAGineer, an expert industrial engineering QA assistant.
You help engineers, technicians, and operators find information in technical documentation including SOPs, manuals, and compliance documents.

Guidelines:
- Provide precise, technical answers based on the provided context
- Always cite which document your answer comes from
- If the context doesn't contain relevant information, clearly state that
- Use proper technical terminology
- Format responses clearly with bullet points or numbered steps when appropriate
- Highlight safety-critical information when relevant

Context from documents:
%s`

// SessionStore is the record-store surface for chat sessions.
type SessionStore interface {
	Create(session *model.ChatSession) error
	ListByUserID(userID string) ([]model.ChatSession, error)
	GetByIDAndUserID(id, userID string) (*model.ChatSession, error)
	RecordExchange(id string) error
	DeleteByIDAndUserID(id, userID string) error
}

// MessageStore is the record-store surface for chat messages.
type MessageStore interface {
	Create(message *model.ChatMessage) error
	ListBySessionID(sessionID string) ([]model.ChatMessage, error)
	DeleteBySessionID(sessionID string) error
}

// CompletionClient is the language-model collaborator.
type CompletionClient interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// EventPublisher forwards usage events to the async persistence pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, event model.UsageEvent) error
}

// HistoryCache is the optional redis-backed message-list cache.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

type ChatService struct {
	sessions     SessionStore
	messages     MessageStore
	docs         DocumentStore
	searchIndex  DocumentIndex
	completer    CompletionClient
	publisher    EventPublisher
	historyCache HistoryCache
	topK         int
}

type ChatInput struct {
	UserID    string
	Role      string
	SessionID string
	Content   string
}

type ChatResult struct {
	SessionID string            `json:"session_id"`
	Message   model.ChatMessage `json:"message"`
	Sources   []model.Citation  `json:"sources"`
}

func NewChatService(
	sessions SessionStore,
	messages MessageStore,
	docs DocumentStore,
	searchIndex DocumentIndex,
	completer CompletionClient,
	publisher EventPublisher,
	historyCache HistoryCache,
	topK int,
) *ChatService {
	if topK <= 0 {
		topK = 5
	}
	return &ChatService{
		sessions:     sessions,
		messages:     messages,
		docs:         docs,
		searchIndex:  searchIndex,
		completer:    completer,
		publisher:    publisher,
		historyCache: historyCache,
		topK:         topK,
	}
}

// SendMessage runs one full exchange: role-filtered retrieval, session
// resolution, grounded generation with a degraded fallback, and durable
// recording of both turns.
func (s *ChatService) SendMessage(ctx context.Context, input ChatInput) (*ChatResult, error) {
	if input.UserID == "" || input.Role == "" {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	allowedDocTypes := model.VisibleDocTypes(input.Role)
	results, err := s.searchIndex.Search(ctx, content, s.topK, allowedDocTypes)
	if err != nil {
		return nil, err
	}

	contextBlock, citations, err := buildContext(results, s.docs.GetByID)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.resolveSession(input.SessionID, input.UserID, content)
	if err != nil {
		return nil, err
	}

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, sessionID)
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}

	userMessage := &model.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      "user",
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(userMessage); err != nil {
		return nil, err
	}

	// Generation runs detached from the request context: a client
	// disconnect must not abandon a turn that retrieval already grounded.
	answer, genErr := s.completer.Complete(context.Background(), []ai.ChatMessage{
		{Role: "system", Content: fmt.Sprintf(systemPromptTemplate, contextBlock)},
		{Role: "user", Content: content},
	})
	if genErr != nil {
		log.Printf("completion failed: %v", genErr)
		answer = degradedAnswer(citations)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = degradedAnswer(citations)
	}

	assistantMessage := &model.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      "assistant",
		Content:   answer,
		CreatedAt: time.Now(),
	}
	assistantMessage.SetSources(citations)
	if err := s.messages.Create(assistantMessage); err != nil {
		return nil, err
	}
	if err := s.sessions.RecordExchange(sessionID); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, model.UsageEvent{
			UserID:    input.UserID,
			EventType: model.EventChatExchange,
			Detail:    sessionID,
			CreatedAt: time.Now(),
		})
	}

	return &ChatResult{
		SessionID: sessionID,
		Message:   *assistantMessage,
		Sources:   citations,
	}, nil
}

func (s *ChatService) ListSessions(userID string) ([]model.ChatSession, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.sessions.ListByUserID(userID)
}

// GetSessionMessages lists a session's messages ascending by timestamp.
// A session owned by someone else reads as not found.
func (s *ChatService) GetSessionMessages(ctx context.Context, userID, sessionID string) ([]model.ChatMessage, error) {
	if userID == "" || sessionID == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.sessions.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if s.historyCache != nil {
		if dirty, err := s.historyCache.IsDirty(ctx, sessionID); err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	messages, err := s.messages.ListBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, err := s.historyCache.IsDirty(ctx, sessionID); err == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, sessionID, messages)
		}
	}
	return messages, nil
}

func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if userID == "" || sessionID == "" {
		return ErrInvalidInput
	}

	session, err := s.sessions.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	if err := s.messages.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.sessions.DeleteByIDAndUserID(sessionID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}
	return nil
}

// resolveSession verifies ownership of a caller-provided id (a session
// owned by someone else reads as not found) and otherwise creates a
// session titled from the first message.
func (s *ChatService) resolveSession(sessionID, userID, firstMessage string) (string, error) {
	if sessionID != "" {
		session, err := s.sessions.GetByIDAndUserID(sessionID, userID)
		if err != nil {
			return "", err
		}
		if session == nil {
			return "", ErrSessionNotFound
		}
		return sessionID, nil
	}

	session := &model.ChatSession{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  deriveTitle(firstMessage),
	}
	if err := s.sessions.Create(session); err != nil {
		return "", err
	}
	return session.ID, nil
}

func deriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= sessionTitleLimit {
		return message
	}
	return string(runes[:sessionTitleLimit]) + "..."
}

func degradedAnswer(citations []model.Citation) string {
	if len(citations) == 0 {
		return "I could not find relevant documents and encountered an error generating a response. Please try again."
	}
	titles := make([]string, len(citations))
	for i, c := range citations {
		titles[i] = c.Title
	}
	return fmt.Sprintf(
		"I found relevant information in the following documents: %s. However, I encountered an error generating a detailed response. Please try again.",
		strings.Join(titles, ", "),
	)
}
