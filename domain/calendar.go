package domain

import "time"

type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date"`
	Alarm       bool      `json:"alarm"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}
