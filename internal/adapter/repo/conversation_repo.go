package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mediastudio/internal/domain"
)

// ConversationRepositoryPG implements domain.ConversationRepository. Messages
// live in a JSONB column and are appended in place.
type ConversationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository backed by PostgreSQL.
func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepositoryPG {
	return &ConversationRepositoryPG{pool: pool}
}

// Create inserts a new conversation record.
func (r *ConversationRepositoryPG) Create(ctx context.Context, conv *domain.Conversation) error {
	settings, err := json.Marshal(conv.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	messages, err := json.Marshal(messagesOrEmpty(conv.Messages))
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	query := `
INSERT INTO conversations (id, user_id, title, language, provider, model, settings, messages, is_rtl, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`
	_, err = r.pool.Exec(ctx, query,
		conv.ID,
		conv.UserID,
		conv.Title,
		conv.Language,
		conv.Provider,
		conv.Model,
		settings,
		messages,
		conv.IsRTL,
		conv.CreatedAt,
		conv.UpdatedAt,
	)
	return err
}

// GetByID fetches a conversation with its full message history.
func (r *ConversationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `
SELECT id, user_id, title, language, provider, model, settings, messages, is_rtl, created_at, updated_at
FROM conversations
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	conv, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return conv, nil
}

// AppendMessage pushes one message onto the history without rewriting it.
func (r *ConversationRepositoryPG) AppendMessage(ctx context.Context, convID string, msg domain.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	query := `
UPDATE conversations
SET messages = messages || $2::jsonb,
    updated_at = NOW()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, convID, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser returns a page of the user's conversations, newest first.
func (r *ConversationRepositoryPG) ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.Conversation, domain.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM conversations WHERE user_id = $1;`, userID).Scan(&total); err != nil {
		return nil, domain.Page{}, err
	}

	query := `
SELECT id, user_id, title, language, provider, model, settings, messages, is_rtl, created_at, updated_at
FROM conversations
WHERE user_id = $1
ORDER BY updated_at DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.pool.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, domain.Page{}, err
	}
	defer rows.Close()

	convs := make([]domain.Conversation, 0, limit)
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, domain.Page{}, err
		}
		convs = append(convs, *conv)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Page{}, err
	}

	totalPages := (total + limit - 1) / limit
	return convs, domain.Page{Page: page, Limit: limit, Total: total, TotalPages: totalPages}, nil
}

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var conv domain.Conversation
	var settings, messages []byte
	if err := row.Scan(
		&conv.ID,
		&conv.UserID,
		&conv.Title,
		&conv.Language,
		&conv.Provider,
		&conv.Model,
		&settings,
		&messages,
		&conv.IsRTL,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &conv.Settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
	}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &conv.Messages); err != nil {
			return nil, fmt.Errorf("decode messages: %w", err)
		}
	}
	return &conv, nil
}

func messagesOrEmpty(msgs []domain.Message) []domain.Message {
	if msgs == nil {
		return []domain.Message{}
	}
	return msgs
}
