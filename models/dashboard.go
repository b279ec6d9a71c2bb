package models

// AdminDashboard — сводка для администратора: счётчики и топ жокеев.
type AdminDashboard struct {
	CompetitionsCount int    `json:"competitions_count"`
	HorsesCount       int    `json:"horses_count"`
	ResultsCount      int    `json:"results_count"`
	TopJockeys        []User `json:"top_jockeys"`
}

// JockeyDashboard — собственные результаты жокея, отсортированные по дате
// состязания по убыванию.
type JockeyDashboard struct {
	Results []Result `json:"results"`
}

// OwnerDashboard — лошади владельца и результаты по всем его лошадям.
type OwnerDashboard struct {
	Horses  []Horse  `json:"horses"`
	Results []Result `json:"results"`
}

// Dashboard — ролевой вариант: заполнено ровно одно поле, совпадающее с Role.
type Dashboard struct {
	Role   UserRole         `json:"role"`
	Admin  *AdminDashboard  `json:"admin,omitempty"`
	Jockey *JockeyDashboard `json:"jockey,omitempty"`
	Owner  *OwnerDashboard  `json:"owner,omitempty"`
}
