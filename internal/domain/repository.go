package domain

import "context"

// GenerationFilter narrows a generation listing.
type GenerationFilter struct {
	UserID       string
	Kind         MediaKind
	Provider     string
	Status       Status
	Category     string
	Tag          string
	FavoriteOnly bool
	PublicOnly   bool
}

// Page describes pagination of a listing response.
type Page struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// GenerationRepository persists normalized generation results. The provider
// core only ever writes through Upsert; querying belongs to the API surface.
type GenerationRepository interface {
	Upsert(ctx context.Context, result *GenerationResult) error
	GetByID(ctx context.Context, id string) (*GenerationResult, error)
	List(ctx context.Context, filter GenerationFilter, page, limit int) ([]GenerationResult, Page, error)
	Delete(ctx context.Context, id, userID string) error
	ToggleFavorite(ctx context.Context, id, userID string) (bool, error)
}

// ConversationRepository persists chat conversations.
type ConversationRepository interface {
	Create(ctx context.Context, conv *Conversation) error
	GetByID(ctx context.Context, id string) (*Conversation, error)
	AppendMessage(ctx context.Context, convID string, msg Message) error
	ListByUser(ctx context.Context, userID string, page, limit int) ([]Conversation, Page, error)
}
