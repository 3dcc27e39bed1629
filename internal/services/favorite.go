package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"conferencesessions/internal/domain"
)

type favoriteService struct {
	favoriteRepo   domain.FavoriteRepository
	contextTimeout time.Duration
}

func NewFavoriteService(favoriteRepo domain.FavoriteRepository, timeout time.Duration) domain.FavoriteService {
	return &favoriteService{favoriteRepo: favoriteRepo, contextTimeout: timeout}
}

func (s *favoriteService) Add(ctx context.Context, userID string, sessionID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return domain.ErrUnauthorized
	}
	if err := s.favoriteRepo.Add(ctx, userID, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (s *favoriteService) Remove(ctx context.Context, userID string, sessionID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return false, domain.ErrUnauthorized
	}
	removed, err := s.favoriteRepo.Remove(ctx, userID, sessionID)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	return removed, nil
}

func (s *favoriteService) List(ctx context.Context, userID string) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	sessions, err := s.favoriteRepo.ListSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	return sessions, nil
}
