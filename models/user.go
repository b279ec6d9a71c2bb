package models

import "time"

// UserRole соответствует ENUM user_role в БД.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleJockey UserRole = "jockey"
	RoleOwner  UserRole = "owner"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleJockey, RoleOwner:
		return true
	}
	return false
}

// JockeyProfile — атрибуты, имеющие смысл только для роли jockey.
type JockeyProfile struct {
	Rating *float64 `json:"rating,omitempty"`
}

// OwnerProfile — атрибуты, имеющие смысл только для роли owner.
type OwnerProfile struct {
	ContactInfo *string `json:"contact_info,omitempty"`
}

// User хранит общие поля плюс ролевое расширение. Колонки rating и
// contact_info существуют у всех строк, но маппятся в профиль только при
// совпадающей роли; для чужой роли значение считается отсутствующим.
type User struct {
	ID           int            `json:"id"`
	Username     string         `json:"username"`
	FullName     string         `json:"full_name"`
	PasswordHash string         `json:"-"`
	Role         UserRole       `json:"role"`
	Age          *int           `json:"age,omitempty"`
	Address      *string        `json:"address,omitempty"`
	Jockey       *JockeyProfile `json:"jockey,omitempty"`
	Owner        *OwnerProfile  `json:"owner,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`

	Horses []Horse `json:"horses,omitempty"`
}

// Rating возвращает рейтинг жокея или nil для остальных ролей.
func (u *User) Rating() *float64 {
	if u.Role == RoleJockey && u.Jockey != nil {
		return u.Jockey.Rating
	}
	return nil
}

func (u *User) ContactInfo() *string {
	if u.Role == RoleOwner && u.Owner != nil {
		return u.Owner.ContactInfo
	}
	return nil
}
