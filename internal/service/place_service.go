package service

import (
	"context"
	"fmt"

	"placebot/core/logger"
	"placebot/internal/model"

	"log/slog"
)

// MaxPlacesPerUser bounds how many places a single user may hold.
// Saving past the limit evicts the oldest place.
const MaxPlacesPerUser = 10

// PlaceStore is the persistence interface the service depends on.
type PlaceStore interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Place, error)
	SaveWithQuota(ctx context.Context, place *model.Place, maxPerUser int) (int64, []int64, error)
	DeleteAllByUser(ctx context.Context, userID int64) (int64, error)
}

// PlaceService implements place listing, saving with quota enforcement
// and bulk deletion on top of a PlaceStore.
type PlaceService struct {
	store PlaceStore
}

// NewPlaceService creates a PlaceService.
func NewPlaceService(store PlaceStore) *PlaceService {
	return &PlaceService{store: store}
}

// List returns the user's saved places, oldest first.
func (s *PlaceService) List(ctx context.Context, userID int64) ([]model.Place, error) {
	places, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		logger.LogEvent(ctx, logger.SVCPlaces, slog.LevelError, "place.list",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	return places, nil
}

// Save persists a completed draft for the user. When the user is at the
// quota the oldest place is dropped in the same transaction.
func (s *PlaceService) Save(ctx context.Context, userID int64, draft model.DraftPlace) (model.Place, error) {
	place := model.Place{
		User:      userID,
		Address:   draft.Address,
		Latitude:  draft.Latitude,
		Longitude: draft.Longitude,
		Image:     draft.Image,
	}
	id, evicted, err := s.store.SaveWithQuota(ctx, &place, MaxPlacesPerUser)
	if err != nil {
		logger.LogEvent(ctx, logger.SVCPlaces, slog.LevelError, "place.save",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return model.Place{}, fmt.Errorf("save place: %w", err)
	}

	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.Int64("place_id", id),
		slog.Int("quota", MaxPlacesPerUser),
	}
	if len(evicted) > 0 {
		attrs = append(attrs, slog.Int("evicted", len(evicted)))
	}
	logger.LogEvent(ctx, logger.SVCPlaces, slog.LevelInfo, "place.save", attrs...)
	return place, nil
}

// Reset removes every place of the user and reports how many there were.
func (s *PlaceService) Reset(ctx context.Context, userID int64) (int64, error) {
	n, err := s.store.DeleteAllByUser(ctx, userID)
	if err != nil {
		logger.LogEvent(ctx, logger.SVCPlaces, slog.LevelError, "place.reset",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return 0, fmt.Errorf("reset places: %w", err)
	}
	logger.LogEvent(ctx, logger.SVCPlaces, slog.LevelInfo, "place.reset",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.Int64("places", n),
	)
	return n, nil
}

// ByPosition returns the place at a 1-based display position. The bool
// result is false when the position is out of range.
func (s *PlaceService) ByPosition(ctx context.Context, userID int64, position int) (model.Place, bool, error) {
	if position < 1 {
		return model.Place{}, false, nil
	}
	places, err := s.List(ctx, userID)
	if err != nil {
		return model.Place{}, false, err
	}
	if position > len(places) {
		return model.Place{}, false, nil
	}
	return places[position-1], true, nil
}
