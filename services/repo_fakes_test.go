package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/valkyria/equestrian-club/models"
	"github.com/valkyria/equestrian-club/repositories"
)

// In-memory реализации репозиториев для тестов сервисного слоя. Повторяют
// семантику Postgres-реализаций: конфликты уникальности, RESTRICT при
// удалении, порядок сортировки выборок.

type fakeUserRepo struct {
	nextID int
	users  map[int]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return repositories.ErrUsernameConflict
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	users := make([]models.User, 0)
	for _, user := range r.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *fakeUserRepo) TopJockeys(_ context.Context, limit int) ([]models.User, error) {
	jockeys := make([]models.User, 0)
	for _, user := range r.users {
		if user.Role == models.RoleJockey && user.Rating() != nil {
			jockeys = append(jockeys, user)
		}
	}
	sort.SliceStable(jockeys, func(i, j int) bool {
		return *jockeys[i].Rating() > *jockeys[j].Rating()
	})
	if len(jockeys) > limit {
		jockeys = jockeys[:limit]
	}
	return jockeys, nil
}

type fakeHorseRepo struct {
	nextID int
	horses map[int]models.Horse
	inUse  map[int]bool // лошади с результатами: удаление запрещено
}

func newFakeHorseRepo() *fakeHorseRepo {
	return &fakeHorseRepo{
		nextID: 1,
		horses: make(map[int]models.Horse),
		inUse:  make(map[int]bool),
	}
}

func (r *fakeHorseRepo) Create(_ context.Context, horse *models.Horse) error {
	horse.ID = r.nextID
	horse.CreatedAt = time.Now()
	r.nextID++
	r.horses[horse.ID] = *horse
	return nil
}

func (r *fakeHorseRepo) GetByID(_ context.Context, id int) (*models.Horse, error) {
	horse, ok := r.horses[id]
	if !ok {
		return nil, repositories.ErrHorseNotFound
	}
	copied := horse
	return &copied, nil
}

func (r *fakeHorseRepo) Update(_ context.Context, horse *models.Horse) error {
	if _, ok := r.horses[horse.ID]; !ok {
		return repositories.ErrHorseNotFound
	}
	r.horses[horse.ID] = *horse
	return nil
}

func (r *fakeHorseRepo) UpdatePhotoKey(_ context.Context, id int, photoKey *string) error {
	horse, ok := r.horses[id]
	if !ok {
		return repositories.ErrHorseNotFound
	}
	horse.PhotoKey = photoKey
	r.horses[id] = horse
	return nil
}

func (r *fakeHorseRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.horses[id]; !ok {
		return repositories.ErrHorseNotFound
	}
	if r.inUse[id] {
		return repositories.ErrHorseInUse
	}
	delete(r.horses, id)
	return nil
}

func (r *fakeHorseRepo) ListAll(_ context.Context) ([]models.Horse, error) {
	horses := make([]models.Horse, 0)
	for _, horse := range r.horses {
		horses = append(horses, horse)
	}
	sort.Slice(horses, func(i, j int) bool { return horses[i].Name < horses[j].Name })
	return horses, nil
}

func (r *fakeHorseRepo) ListByOwner(_ context.Context, ownerID int) ([]models.Horse, error) {
	horses := make([]models.Horse, 0)
	for _, horse := range r.horses {
		if horse.OwnerID == ownerID {
			horses = append(horses, horse)
		}
	}
	sort.Slice(horses, func(i, j int) bool { return horses[i].Name < horses[j].Name })
	return horses, nil
}

func (r *fakeHorseRepo) Count(_ context.Context) (int, error) {
	return len(r.horses), nil
}

type fakeCompetitionRepo struct {
	nextID       int
	competitions map[int]models.Competition
	inUse        map[int]bool
}

func newFakeCompetitionRepo() *fakeCompetitionRepo {
	return &fakeCompetitionRepo{
		nextID:       1,
		competitions: make(map[int]models.Competition),
		inUse:        make(map[int]bool),
	}
}

func (r *fakeCompetitionRepo) Create(_ context.Context, competition *models.Competition) error {
	competition.ID = r.nextID
	competition.CreatedAt = time.Now()
	r.nextID++
	r.competitions[competition.ID] = *competition
	return nil
}

func (r *fakeCompetitionRepo) GetByID(_ context.Context, id int) (*models.Competition, error) {
	competition, ok := r.competitions[id]
	if !ok {
		return nil, repositories.ErrCompetitionNotFound
	}
	copied := competition
	return &copied, nil
}

func (r *fakeCompetitionRepo) Update(_ context.Context, competition *models.Competition) error {
	if _, ok := r.competitions[competition.ID]; !ok {
		return repositories.ErrCompetitionNotFound
	}
	r.competitions[competition.ID] = *competition
	return nil
}

func (r *fakeCompetitionRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.competitions[id]; !ok {
		return repositories.ErrCompetitionNotFound
	}
	if r.inUse[id] {
		return repositories.ErrCompetitionInUse
	}
	delete(r.competitions, id)
	return nil
}

func (r *fakeCompetitionRepo) ListAll(_ context.Context) ([]models.Competition, error) {
	competitions := make([]models.Competition, 0)
	for _, competition := range r.competitions {
		competitions = append(competitions, competition)
	}
	sort.Slice(competitions, func(i, j int) bool {
		if !competitions[i].Date.Equal(competitions[j].Date) {
			return competitions[i].Date.After(competitions[j].Date)
		}
		ti, tj := "", ""
		if competitions[i].Time != nil {
			ti = *competitions[i].Time
		}
		if competitions[j].Time != nil {
			tj = *competitions[j].Time
		}
		return ti > tj
	})
	return competitions, nil
}

func (r *fakeCompetitionRepo) Count(_ context.Context) (int, error) {
	return len(r.competitions), nil
}

type fakeResultRepo struct {
	nextID       int
	results      map[int]models.Result
	competitions *fakeCompetitionRepo
	horses       *fakeHorseRepo
}

func newFakeResultRepo(competitions *fakeCompetitionRepo, horses *fakeHorseRepo) *fakeResultRepo {
	return &fakeResultRepo{
		nextID:       1,
		results:      make(map[int]models.Result),
		competitions: competitions,
		horses:       horses,
	}
}

func (r *fakeResultRepo) refsValid(result *models.Result) bool {
	if r.competitions != nil {
		if _, ok := r.competitions.competitions[result.CompetitionID]; !ok {
			return false
		}
	}
	if r.horses != nil {
		if _, ok := r.horses.horses[result.HorseID]; !ok {
			return false
		}
	}
	return true
}

func (r *fakeResultRepo) Create(_ context.Context, result *models.Result) error {
	if !r.refsValid(result) {
		return repositories.ErrResultRefInvalid
	}
	result.ID = r.nextID
	result.CreatedAt = time.Now()
	r.nextID++
	r.results[result.ID] = *result
	if r.horses != nil {
		r.horses.inUse[result.HorseID] = true
	}
	if r.competitions != nil {
		r.competitions.inUse[result.CompetitionID] = true
	}
	return nil
}

func (r *fakeResultRepo) GetByID(_ context.Context, id int) (*models.Result, error) {
	result, ok := r.results[id]
	if !ok {
		return nil, repositories.ErrResultNotFound
	}
	copied := result
	return &copied, nil
}

func (r *fakeResultRepo) Update(_ context.Context, result *models.Result) error {
	if _, ok := r.results[result.ID]; !ok {
		return repositories.ErrResultNotFound
	}
	if !r.refsValid(result) {
		return repositories.ErrResultRefInvalid
	}
	r.results[result.ID] = *result
	return nil
}

func (r *fakeResultRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.results[id]; !ok {
		return repositories.ErrResultNotFound
	}
	delete(r.results, id)
	return nil
}

func (r *fakeResultRepo) withCompetition(result models.Result) models.Result {
	if r.competitions != nil {
		if competition, ok := r.competitions.competitions[result.CompetitionID]; ok {
			copied := competition
			result.Competition = &copied
		}
	}
	return result
}

func (r *fakeResultRepo) sortByDateDesc(results []models.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		var di, dj time.Time
		if results[i].Competition != nil {
			di = results[i].Competition.Date
		}
		if results[j].Competition != nil {
			dj = results[j].Competition.Date
		}
		return di.After(dj)
	})
}

func (r *fakeResultRepo) ListAll(_ context.Context) ([]models.Result, error) {
	results := make([]models.Result, 0)
	for _, result := range r.results {
		results = append(results, r.withCompetition(result))
	}
	// Дата состязания по убыванию, место по возрастанию (NULL в конце).
	sort.SliceStable(results, func(i, j int) bool {
		var di, dj time.Time
		if results[i].Competition != nil {
			di = results[i].Competition.Date
		}
		if results[j].Competition != nil {
			dj = results[j].Competition.Date
		}
		if !di.Equal(dj) {
			return di.After(dj)
		}
		pi, pj := int(^uint(0)>>1), int(^uint(0)>>1)
		if results[i].Place != nil {
			pi = *results[i].Place
		}
		if results[j].Place != nil {
			pj = *results[j].Place
		}
		return pi < pj
	})
	return results, nil
}

func (r *fakeResultRepo) ListByJockey(_ context.Context, jockeyID int) ([]models.Result, error) {
	results := make([]models.Result, 0)
	for _, result := range r.results {
		if result.JockeyID == jockeyID {
			results = append(results, r.withCompetition(result))
		}
	}
	r.sortByDateDesc(results)
	return results, nil
}

func (r *fakeResultRepo) ListByHorseOwner(_ context.Context, ownerID int) ([]models.Result, error) {
	results := make([]models.Result, 0)
	for _, result := range r.results {
		if r.horses == nil {
			continue
		}
		horse, ok := r.horses.horses[result.HorseID]
		if ok && horse.OwnerID == ownerID {
			results = append(results, r.withCompetition(result))
		}
	}
	r.sortByDateDesc(results)
	return results, nil
}

func (r *fakeResultRepo) Count(_ context.Context) (int, error) {
	return len(r.results), nil
}

// fakeSessionRepo защищён мьютексом: фоновая чистка обращается к нему из
// отдельной горутины.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]models.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.CreatedAt = time.Now()
	r.sessions[session.Token] = *session
	return nil
}

func (r *fakeSessionRepo) GetByToken(_ context.Context, token string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	copied := session
	return &copied, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return repositories.ErrSessionNotFound
	}
	delete(r.sessions, token)
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	now := time.Now()
	for token, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, token)
			purged++
		}
	}
	return purged, nil
}
