package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mediastudio/internal/domain"
)

// GenerationRepositoryPG implements domain.GenerationRepository.
type GenerationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGenerationRepository creates a new generation repository backed by PostgreSQL.
func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{pool: pool}
}

// Upsert inserts a generation record or refreshes it when a poll settles an
// earlier write for the same provider task.
func (r *GenerationRepositoryPG) Upsert(ctx context.Context, result *domain.GenerationResult) error {
	metadata, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	query := `
INSERT INTO generations (id, user_id, kind, prompt, revised_prompt, negative_prompt, provider, model, status,
                         image_url, video_url, thumbnail_url, cost, tags, category, is_public, is_favorite,
                         metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
ON CONFLICT (id) DO UPDATE
SET status = EXCLUDED.status,
    revised_prompt = EXCLUDED.revised_prompt,
    image_url = EXCLUDED.image_url,
    video_url = EXCLUDED.video_url,
    thumbnail_url = EXCLUDED.thumbnail_url,
    cost = EXCLUDED.cost,
    metadata = EXCLUDED.metadata,
    updated_at = NOW();
`
	_, err = r.pool.Exec(ctx, query,
		result.ID,
		result.UserID,
		result.Kind,
		result.Prompt,
		result.RevisedPrompt,
		result.NegativePrompt,
		result.Provider,
		result.Model,
		result.Status,
		result.ImageURL,
		result.VideoURL,
		result.ThumbnailURL,
		result.Cost,
		result.Tags,
		result.Category,
		result.IsPublic,
		result.IsFavorite,
		metadata,
		result.CreatedAt,
		result.UpdatedAt,
	)
	return err
}

// GetByID fetches a generation by its identifier.
func (r *GenerationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.GenerationResult, error) {
	query := selectGeneration + ` WHERE id = $1;`
	row := r.pool.QueryRow(ctx, query, id)
	result, err := scanGeneration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return result, nil
}

// List returns a filtered page of generations, newest first.
func (r *GenerationRepositoryPG) List(ctx context.Context, filter domain.GenerationFilter, page, limit int) ([]domain.GenerationResult, domain.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	where, args := buildGenerationFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM generations` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, domain.Page{}, err
	}

	args = append(args, limit, (page-1)*limit)
	query := selectGeneration + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Page{}, err
	}
	defer rows.Close()

	results := make([]domain.GenerationResult, 0, limit)
	for rows.Next() {
		result, err := scanGeneration(rows)
		if err != nil {
			return nil, domain.Page{}, err
		}
		results = append(results, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Page{}, err
	}

	totalPages := (total + limit - 1) / limit
	return results, domain.Page{Page: page, Limit: limit, Total: total, TotalPages: totalPages}, nil
}

// Delete removes a generation owned by the user.
func (r *GenerationRepositoryPG) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM generations WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (r *GenerationRepositoryPG) ToggleFavorite(ctx context.Context, id, userID string) (bool, error) {
	query := `
UPDATE generations
SET is_favorite = NOT is_favorite,
    updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING is_favorite;
`
	var favorite bool
	if err := r.pool.QueryRow(ctx, query, id, userID).Scan(&favorite); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	return favorite, nil
}

const selectGeneration = `
SELECT id, user_id, kind, prompt, revised_prompt, negative_prompt, provider, model, status,
       image_url, video_url, thumbnail_url, cost, tags, category, is_public, is_favorite,
       metadata, created_at, updated_at
FROM generations`

func scanGeneration(row pgx.Row) (*domain.GenerationResult, error) {
	var result domain.GenerationResult
	var metadata []byte
	if err := row.Scan(
		&result.ID,
		&result.UserID,
		&result.Kind,
		&result.Prompt,
		&result.RevisedPrompt,
		&result.NegativePrompt,
		&result.Provider,
		&result.Model,
		&result.Status,
		&result.ImageURL,
		&result.VideoURL,
		&result.ThumbnailURL,
		&result.Cost,
		&result.Tags,
		&result.Category,
		&result.IsPublic,
		&result.IsFavorite,
		&metadata,
		&result.CreatedAt,
		&result.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &result.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &result, nil
}

func buildGenerationFilter(filter domain.GenerationFilter) (string, []any) {
	clauses := make([]string, 0, 6)
	args := make([]any, 0, 6)
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.Kind != "" {
		add("kind = $%d", filter.Kind)
	}
	if filter.Provider != "" {
		add("provider = $%d", filter.Provider)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Tag != "" {
		add("$%d = ANY(tags)", filter.Tag)
	}
	if filter.FavoriteOnly {
		clauses = append(clauses, "is_favorite = TRUE")
	}
	if filter.PublicOnly {
		clauses = append(clauses, "is_public = TRUE")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
