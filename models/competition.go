package models

import "time"

// Форматы, в которых принимаются дата и время состязания.
const (
	CompetitionDateLayout = "2006-01-02"
	CompetitionTimeLayout = "15:04"
)

// Competition независима от остальных сущностей, пока на неё не ссылаются
// результаты. Time хранится строкой "HH:MM" (колонка TIME в БД не нужна —
// арифметика по времени не выполняется).
type Competition struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Time      *string   `json:"time,omitempty"`
	Place     *string   `json:"place,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
