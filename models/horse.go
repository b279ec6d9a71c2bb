package models

import "time"

// Horse принадлежит ровно одному владельцу (users.id). Смена владельца
// доступна только администратору.
type Horse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Sex       *string   `json:"sex,omitempty"`
	Age       *int      `json:"age,omitempty"`
	OwnerID   int       `json:"owner_id"`
	PhotoKey  *string   `json:"-"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Owner *User `json:"owner,omitempty"`
}
