package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerlens/career-mentor/internal/models"
)

// recordingInvoker returns canned replies and records every request it
// receives.
type recordingInvoker struct {
	mu       sync.Mutex
	requests []models.ModelRequest
	replies  int
}

func (r *recordingInvoker) Invoke(_ context.Context, req models.ModelRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy: the caller mutates its history slice between turns
	history := make([]models.ChatTurn, len(req.History))
	copy(history, req.History)
	r.requests = append(r.requests, models.ModelRequest{History: history, Message: req.Message})

	r.replies++
	return fmt.Sprintf("reply %d", r.replies), nil
}

func (r *recordingInvoker) lastRequest() models.ModelRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func newChatServiceForTest(invoker ModelInvoker) ChatService {
	return NewChatService(invoker, NewPromptBuilder(8000))
}

func TestHandleTurnAccumulatesHistory(t *testing.T) {
	invoker := &recordingInvoker{}
	chat := newChatServiceForTest(invoker)
	now := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)

	reply1, err := chat.HandleTurn(context.Background(), "s1", "How do I prepare for interviews?", now)
	require.NoError(t, err)
	assert.Equal(t, "reply 1", reply1)

	reply2, err := chat.HandleTurn(context.Background(), "s1", "What about take-home tasks?", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "reply 2", reply2)

	// Two user/assistant pairs after the seeded framing pair
	history := chat.History("s1")
	require.Len(t, history, 4)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "How do I prepare for interviews?", history[0].Text)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
	assert.Equal(t, "reply 1", history[1].Text)
	assert.Equal(t, models.RoleUser, history[2].Role)
	assert.Equal(t, models.RoleAssistant, history[3].Role)
}

func TestHandleTurnSeedsPreambleWithSessionCreationTime(t *testing.T) {
	invoker := &recordingInvoker{}
	chat := newChatServiceForTest(invoker)
	created := time.Date(2026, time.February, 3, 8, 0, 0, 0, time.UTC)

	_, err := chat.HandleTurn(context.Background(), "s1", "hello", created)
	require.NoError(t, err)

	first := invoker.lastRequest()
	require.Len(t, first.History, 2)
	assert.Equal(t, models.RoleUser, first.History[0].Role)
	assert.Contains(t, first.History[0].Text, "February 3, 2026")
	assert.Equal(t, models.RoleAssistant, first.History[1].Role)
	assert.Equal(t, MentorPreambleAck, first.History[1].Text)

	// Later turns keep the original timestamp; the preamble is not refreshed
	_, err = chat.HandleTurn(context.Background(), "s1", "and now?", created.AddDate(0, 1, 0))
	require.NoError(t, err)

	second := invoker.lastRequest()
	assert.Contains(t, second.History[0].Text, "February 3, 2026")
}

func TestHandleTurnRejectsEmptyMessage(t *testing.T) {
	invoker := &recordingInvoker{}
	chat := newChatServiceForTest(invoker)
	now := time.Now()

	_, err := chat.HandleTurn(context.Background(), "s1", "hello", now)
	require.NoError(t, err)

	for _, message := range []string{"", "   ", "\n\t"} {
		_, err := chat.HandleTurn(context.Background(), "s1", message, now)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	// History untouched, model never contacted for the rejected turns
	assert.Len(t, chat.History("s1"), 2)
	assert.Len(t, invoker.requests, 1)
}

func TestHandleTurnDefaultsSessionKey(t *testing.T) {
	invoker := &recordingInvoker{}
	chat := newChatServiceForTest(invoker)

	_, err := chat.HandleTurn(context.Background(), "", "hello", time.Now())
	require.NoError(t, err)

	assert.Len(t, chat.History(DefaultSessionKey), 2)
	assert.Len(t, chat.History(""), 2)
}

func TestHandleTurnSerializesConcurrentCallsPerSession(t *testing.T) {
	invoker := &recordingInvoker{}
	chat := newChatServiceForTest(invoker)
	now := time.Now()

	const callers = 8
	const turnsPerCaller = 5

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(caller int) {
			defer wg.Done()
			for j := 0; j < turnsPerCaller; j++ {
				_, err := chat.HandleTurn(context.Background(), "shared", fmt.Sprintf("caller %d turn %d", caller, j), now)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	history := chat.History("shared")
	require.Len(t, history, 2*callers*turnsPerCaller)

	// Roles must strictly alternate user/assistant; a corrupted
	// interleaving would break the pairing
	for i, turn := range history {
		if i%2 == 0 {
			assert.Equal(t, models.RoleUser, turn.Role, "turn %d", i)
		} else {
			assert.Equal(t, models.RoleAssistant, turn.Role, "turn %d", i)
		}
	}
}

func TestHandleTurnIndependentSessions(t *testing.T) {
	invoker := &recordingInvoker{}
	chat := newChatServiceForTest(invoker)
	now := time.Now()

	_, err := chat.HandleTurn(context.Background(), "a", "hello from a", now)
	require.NoError(t, err)
	_, err = chat.HandleTurn(context.Background(), "b", "hello from b", now)
	require.NoError(t, err)

	assert.Len(t, chat.History("a"), 2)
	assert.Len(t, chat.History("b"), 2)
	assert.Equal(t, "hello from a", chat.History("a")[0].Text)
	assert.Equal(t, "hello from b", chat.History("b")[0].Text)
}
