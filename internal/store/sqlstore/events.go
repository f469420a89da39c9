package sqlstore

import (
	"context"
	"fmt"
	"time"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

type eventRow struct {
	ID          string  `db:"id"`
	Title       string  `db:"title"`
	Description *string `db:"description"`
	Date        string  `db:"date"`
	Alarm       bool    `db:"alarm"`
	UserID      string  `db:"user_id"`
	CreatedAt   string  `db:"created_at"`
}

func (s *Store) CreateEvent(ctx context.Context, e *domain.CalendarEvent) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO calendar_events (id, title, description, date, alarm, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.Title, e.Description, store.FormatTime(e.Date), e.Alarm, e.UserID, store.FormatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert calendar event: %w", err)
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, userID string, start, end *time.Time) ([]domain.CalendarEvent, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := `SELECT id, title, description, date, alarm, user_id, created_at FROM calendar_events WHERE user_id = ?`
	args := []any{userID}
	if start != nil && end != nil {
		query += ` AND date >= ? AND date <= ?`
		args = append(args, store.FormatTime(*start), store.FormatTime(*end))
	}
	query += ` ORDER BY date ASC, id`

	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	events := make([]domain.CalendarEvent, 0, len(rows))
	for _, r := range rows {
		date, err := store.ParseTime(r.Date)
		if err != nil {
			return nil, err
		}
		created, err := store.ParseTime(r.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, domain.CalendarEvent{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Date:        date,
			Alarm:       r.Alarm,
			UserID:      r.UserID,
			CreatedAt:   created,
		})
	}
	return events, nil
}

// DeleteEvent removes an event only when it belongs to userID.
func (s *Store) DeleteEvent(ctx context.Context, id, userID string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM calendar_events WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("calendar event %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
