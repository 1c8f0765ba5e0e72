package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
	"mediastudio/internal/lang"
	"mediastudio/internal/providers/chat"
)

const defaultChatProvider = "openai"

// ChatService runs completions over persisted conversations. The language of
// a conversation follows the script of its first user message.
type ChatService struct {
	adapters map[string]chat.Adapter
	repo     domain.ConversationRepository
	logger   zerolog.Logger
}

func NewChatService(repo domain.ConversationRepository, logger zerolog.Logger, adapters ...chat.Adapter) *ChatService {
	byID := make(map[string]chat.Adapter, len(adapters))
	for _, a := range adapters {
		byID[a.ID()] = a
	}
	return &ChatService{adapters: byID, repo: repo, logger: logger}
}

// CompletionInput is one user turn, optionally continuing an existing
// conversation.
type CompletionInput struct {
	UserID         string
	ConversationID string
	Provider       string
	Model          string
	Message        string
	Settings       domain.ChatSettings
}

// CompletionOutput carries the assistant reply with its conversation.
type CompletionOutput struct {
	Conversation *domain.Conversation `json:"conversation"`
	Reply        domain.Message       `json:"reply"`
	Usage        chat.Usage           `json:"usage"`
}

// Complete appends the user turn, runs the completion and appends the reply.
func (s *ChatService) Complete(ctx context.Context, in CompletionInput) (*CompletionOutput, error) {
	providerID := in.Provider
	if providerID == "" {
		providerID = defaultChatProvider
	}
	adapter, ok := s.adapters[providerID]
	if !ok {
		return nil, &domain.ConfigurationError{Provider: providerID, Reason: "chat provider not configured"}
	}

	conv, err := s.conversation(ctx, in, providerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	userMsg := domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleUser,
		Content:   in.Message,
		Timestamp: now,
	}
	if err := s.repo.AppendMessage(ctx, conv.ID, userMsg); err != nil {
		return nil, err
	}
	conv.Messages = append(conv.Messages, userMsg)

	resp, err := adapter.Complete(ctx, chat.Request{
		Model:    defaultString(in.Model, conv.Model),
		Messages: conv.Messages,
		Settings: conv.Settings,
	})
	if err != nil {
		return nil, err
	}

	reply := domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleAssistant,
		Content:   resp.Content,
		Timestamp: time.Now().UTC(),
		Metadata: map[string]any{
			"model":  resp.Model,
			"tokens": resp.Usage.TotalTokens,
		},
	}
	if err := s.repo.AppendMessage(ctx, conv.ID, reply); err != nil {
		return nil, err
	}
	conv.Messages = append(conv.Messages, reply)
	conv.UpdatedAt = reply.Timestamp

	return &CompletionOutput{Conversation: conv, Reply: reply, Usage: resp.Usage}, nil
}

// Get fetches a conversation owned by the user.
func (s *ChatService) Get(ctx context.Context, userID, id string) (*domain.Conversation, error) {
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return conv, nil
}

// List returns a page of the user's conversations.
func (s *ChatService) List(ctx context.Context, userID string, page, limit int) ([]domain.Conversation, domain.Page, error) {
	return s.repo.ListByUser(ctx, userID, page, limit)
}

// Providers lists configured chat provider ids with their models.
func (s *ChatService) Providers() map[string][]string {
	out := make(map[string][]string, len(s.adapters))
	for id, a := range s.adapters {
		out[id] = a.Models()
	}
	return out
}

// conversation resolves or creates the conversation for a completion.
func (s *ChatService) conversation(ctx context.Context, in CompletionInput, providerID string) (*domain.Conversation, error) {
	if in.ConversationID != "" {
		return s.Get(ctx, in.UserID, in.ConversationID)
	}

	language := lang.Detect(in.Message)
	if language == "en" && in.Message != "" && !isASCII(in.Message) {
		// Unrecognized scripts are served in English; worth noticing in logs
		// if it happens a lot.
		s.logger.Warn().Str("user_id", in.UserID).Msg("chat: unrecognized script, defaulting to english")
	}

	now := time.Now().UTC()
	conv := &domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Title:     conversationTitle(in.Message),
		Language:  language,
		Provider:  providerID,
		Model:     in.Model,
		Settings:  in.Settings,
		Messages:  []domain.Message{},
		IsRTL:     lang.IsRTL(in.Message),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func conversationTitle(message string) string {
	const maxTitle = 60
	runes := []rune(message)
	if len(runes) <= maxTitle {
		return message
	}
	return string(runes[:maxTitle]) + "..."
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

func defaultString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
