package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"careerlens/career-mentor/internal/models"
)

// ErrEmptyMessage rejects a chat turn whose message is empty or
// whitespace-only. The model is never contacted and history is untouched.
var ErrEmptyMessage = errors.New("message must not be empty")

// DefaultSessionKey is used when a caller supplies no key, giving a single
// implicit conversation.
const DefaultSessionKey = "default"

type ChatService interface {
	HandleTurn(ctx context.Context, sessionKey, userMessage string, now time.Time) (string, error)
	History(sessionKey string) []models.ChatTurn
}

// mentorSession holds one conversation. The mutex serializes turns within
// the session; different sessions never block each other.
type mentorSession struct {
	mu        sync.Mutex
	createdAt time.Time
	turns     []models.ChatTurn
}

type chatService struct {
	invoker       ModelInvoker
	promptBuilder *PromptBuilder

	mu       sync.Mutex
	sessions map[string]*mentorSession
}

func NewChatService(invoker ModelInvoker, promptBuilder *PromptBuilder) ChatService {
	return &chatService{
		invoker:       invoker,
		promptBuilder: promptBuilder,
		sessions:      make(map[string]*mentorSession),
	}
}

// HandleTurn runs one exchange: append the user message to the session's
// history, invoke the model with the accumulated context, append the
// reply, and return it. A fresh session is seeded with a framing pair
// embedding the wall clock at creation; that timestamp is not refreshed on
// later turns.
func (s *chatService) HandleTurn(ctx context.Context, sessionKey, userMessage string, now time.Time) (string, error) {
	if strings.TrimSpace(userMessage) == "" {
		return "", ErrEmptyMessage
	}

	session := s.getOrCreate(sessionKey, now)

	session.mu.Lock()
	defer session.mu.Unlock()

	req := models.ModelRequest{
		History: session.turns,
		Message: userMessage,
	}

	reply, err := s.invoker.Invoke(ctx, req)
	if err != nil {
		return "", err
	}

	session.turns = append(session.turns,
		models.ChatTurn{Role: models.RoleUser, Text: userMessage},
		models.ChatTurn{Role: models.RoleAssistant, Text: reply},
	)

	return reply, nil
}

// History returns a copy of the session's turns after the seeded framing
// pair. Unknown keys return nil.
func (s *chatService) History(sessionKey string) []models.ChatTurn {
	if sessionKey == "" {
		sessionKey = DefaultSessionKey
	}

	s.mu.Lock()
	session, ok := s.sessions[sessionKey]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	turns := make([]models.ChatTurn, len(session.turns)-2)
	copy(turns, session.turns[2:])
	return turns
}

func (s *chatService) getOrCreate(sessionKey string, now time.Time) *mentorSession {
	if sessionKey == "" {
		sessionKey = DefaultSessionKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionKey]; ok {
		return session
	}

	session := &mentorSession{
		createdAt: now,
		turns: []models.ChatTurn{
			{Role: models.RoleUser, Text: s.promptBuilder.BuildMentorPreamble(now)},
			{Role: models.RoleAssistant, Text: MentorPreambleAck},
		},
	}
	s.sessions[sessionKey] = session
	return session
}
