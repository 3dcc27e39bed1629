package domain

import "context"

// FavoriteRepository stores the sessions a user bookmarked.
type FavoriteRepository interface {
	Add(ctx context.Context, userID string, sessionID int64) error
	Remove(ctx context.Context, userID string, sessionID int64) (bool, error)
	Exists(ctx context.Context, userID string, sessionID int64) (bool, error)
	ListSessions(ctx context.Context, userID string) ([]*Session, error)
}

// FavoriteService bookmarks sessions for the viewer.
type FavoriteService interface {
	Add(ctx context.Context, userID string, sessionID int64) error
	Remove(ctx context.Context, userID string, sessionID int64) (bool, error)
	List(ctx context.Context, userID string) ([]*Session, error)
}
