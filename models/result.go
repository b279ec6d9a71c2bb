package models

import "time"

// Result ссылается на состязание, лошадь и пользователя-жокея. Роль
// jockey_id на уровне данных не проверяется: слой авторизации отвечает за
// то, чтобы в форме создания предлагались только жокеи. RaceTime — строка
// вида "01:45.23", арифметика по ней не выполняется.
type Result struct {
	ID            int       `json:"id"`
	CompetitionID int       `json:"competition_id"`
	HorseID       int       `json:"horse_id"`
	JockeyID      int       `json:"jockey_id"`
	Place         *int      `json:"place,omitempty"`
	RaceTime      *string   `json:"race_time,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	Competition *Competition `json:"competition,omitempty"`
	Horse       *Horse       `json:"horse,omitempty"`
	Jockey      *User        `json:"jockey,omitempty"`
}
