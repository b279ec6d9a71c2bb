package models

// Actor — установленная личность запроса. Anonymous() для публичных маршрутов.
type Actor struct {
	ID            int
	Role          UserRole
	Authenticated bool
}

func Anonymous() Actor {
	return Actor{}
}
