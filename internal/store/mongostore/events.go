package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

func (s *Store) CreateEvent(ctx context.Context, e *domain.CalendarEvent) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.c(colEvents).InsertOne(ctx, eventDoc{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        store.FormatTime(e.Date),
		Alarm:       e.Alarm,
		UserID:      e.UserID,
		CreatedAt:   store.FormatTime(e.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func eventFilter(userID string, start, end *time.Time) bson.M {
	filter := bson.M{"user_id": userID}
	date := bson.M{}
	if start != nil {
		date["$gte"] = store.FormatTime(*start)
	}
	if end != nil {
		date["$lte"] = store.FormatTime(*end)
	}
	if len(date) > 0 {
		filter["date"] = date
	}
	return filter
}

func (s *Store) ListEvents(ctx context.Context, userID string, start, end *time.Time) ([]domain.CalendarEvent, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	docs, err := findAll[eventDoc](ctx, s.c(colEvents), eventFilter(userID, start, end),
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]domain.CalendarEvent, 0, len(docs))
	for _, d := range docs {
		e, err := d.event()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id, userID string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.c(colEvents).DeleteOne(ctx, bson.M{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
