package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers/chat"
)

type fakeChatAdapter struct {
	id       string
	reply    string
	err      error
	requests []chat.Request
}

func (f *fakeChatAdapter) ID() string       { return f.id }
func (f *fakeChatAdapter) Models() []string { return []string{f.id + "-model"} }

func (f *fakeChatAdapter) Complete(ctx context.Context, req chat.Request) (*chat.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &chat.Response{
		Content: f.reply,
		Model:   f.id + "-model",
		Usage:   chat.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}, nil
}

type memConvRepo struct {
	mu    sync.Mutex
	convs map[string]*domain.Conversation
}

func newMemConvRepo() *memConvRepo {
	return &memConvRepo{convs: map[string]*domain.Conversation{}}
}

func (m *memConvRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *conv
	m.convs[conv.ID] = &cp
	return nil
}

func (m *memConvRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *conv
	cp.Messages = append([]domain.Message(nil), conv.Messages...)
	return &cp, nil
}

func (m *memConvRepo) AppendMessage(ctx context.Context, convID string, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[convID]
	if !ok {
		return domain.ErrNotFound
	}
	conv.Messages = append(conv.Messages, msg)
	return nil
}

func (m *memConvRepo) ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.Conversation, domain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Conversation, 0, len(m.convs))
	for _, conv := range m.convs {
		if conv.UserID == userID {
			out = append(out, *conv)
		}
	}
	return out, domain.Page{Page: page, Limit: limit, Total: len(out), TotalPages: 1}, nil
}

func TestCompleteCreatesConversation(t *testing.T) {
	adapter := &fakeChatAdapter{id: "openai", reply: "hello back"}
	repo := newMemConvRepo()
	svc := NewChatService(repo, zerolog.Nop(), adapter)

	out, err := svc.Complete(context.Background(), CompletionInput{
		UserID:  "alice",
		Message: "hello there",
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	if out.Reply.Content != "hello back" || out.Reply.Role != domain.RoleAssistant {
		t.Fatalf("unexpected reply %+v", out.Reply)
	}
	if out.Usage.TotalTokens != 5 {
		t.Fatalf("unexpected usage %+v", out.Usage)
	}
	if out.Conversation.Language != "en" || out.Conversation.IsRTL {
		t.Fatalf("unexpected language detection %+v", out.Conversation)
	}
	if out.Conversation.Title != "hello there" {
		t.Fatalf("unexpected title %q", out.Conversation.Title)
	}

	stored, err := repo.GetByID(context.Background(), out.Conversation.ID)
	if err != nil {
		t.Fatalf("conversation not persisted: %v", err)
	}
	if len(stored.Messages) != 2 {
		t.Fatalf("expected user turn and reply stored, got %d messages", len(stored.Messages))
	}
	if stored.Messages[0].Role != domain.RoleUser || stored.Messages[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected message order %+v", stored.Messages)
	}
}

func TestCompleteArabicConversation(t *testing.T) {
	adapter := &fakeChatAdapter{id: "openai", reply: "أهلا"}
	svc := NewChatService(newMemConvRepo(), zerolog.Nop(), adapter)

	out, err := svc.Complete(context.Background(), CompletionInput{
		UserID:  "alice",
		Message: "مرحبا كيف حالك",
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if out.Conversation.Language != "ar" || !out.Conversation.IsRTL {
		t.Fatalf("arabic message must create an RTL conversation: %+v", out.Conversation)
	}
}

func TestCompleteContinuesConversation(t *testing.T) {
	adapter := &fakeChatAdapter{id: "openai", reply: "again"}
	repo := newMemConvRepo()
	svc := NewChatService(repo, zerolog.Nop(), adapter)

	first, err := svc.Complete(context.Background(), CompletionInput{UserID: "alice", Message: "first"})
	if err != nil {
		t.Fatalf("first Complete returned error: %v", err)
	}
	second, err := svc.Complete(context.Background(), CompletionInput{
		UserID:         "alice",
		ConversationID: first.Conversation.ID,
		Message:        "second",
	})
	if err != nil {
		t.Fatalf("second Complete returned error: %v", err)
	}
	if second.Conversation.ID != first.Conversation.ID {
		t.Fatal("second turn must continue the same conversation")
	}

	// The second completion must see the full history plus the new turn.
	last := adapter.requests[len(adapter.requests)-1]
	if len(last.Messages) != 3 {
		t.Fatalf("expected 3 messages in completion request, got %d", len(last.Messages))
	}
	if last.Messages[2].Content != "second" {
		t.Fatalf("new turn must be last: %+v", last.Messages)
	}
}

func TestCompleteForeignConversationRejected(t *testing.T) {
	adapter := &fakeChatAdapter{id: "openai", reply: "x"}
	repo := newMemConvRepo()
	svc := NewChatService(repo, zerolog.Nop(), adapter)

	first, err := svc.Complete(context.Background(), CompletionInput{UserID: "alice", Message: "mine"})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	_, err = svc.Complete(context.Background(), CompletionInput{
		UserID:         "mallory",
		ConversationID: first.Conversation.ID,
		Message:        "theirs",
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCompleteUnknownProvider(t *testing.T) {
	svc := NewChatService(newMemConvRepo(), zerolog.Nop(), &fakeChatAdapter{id: "openai"})
	_, err := svc.Complete(context.Background(), CompletionInput{
		UserID:   "alice",
		Provider: "cohere",
		Message:  "hi",
	})
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestConversationTitleTruncation(t *testing.T) {
	long := strings.Repeat("عربى ", 30)
	title := conversationTitle(long)
	if runes := []rune(title); len(runes) != 63 {
		t.Fatalf("expected 60 runes plus ellipsis, got %d", len(runes))
	}
	if !strings.HasSuffix(title, "...") {
		t.Fatalf("truncated title must end with ellipsis: %q", title)
	}

	if got := conversationTitle("short"); got != "short" {
		t.Fatalf("short titles must pass through, got %q", got)
	}
}
