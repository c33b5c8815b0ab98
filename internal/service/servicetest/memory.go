// Package servicetest provides in-memory implementations of the service
// store interfaces.  They mirror the MySQL repositories' error
// semantics (sentinels from internal/repository) so service and handler
// tests can run without a database.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/repository"
	"github.com/iliyamo/event-reservation-api/internal/utils"
)

type reservationKey struct{ userID, eventID string }

type tokenRow struct {
	userID string
	exp    time.Time
}

// DB is a shared in-memory database.  Timestamps come from a clock that
// advances one millisecond per write so "newest first" orderings are
// deterministic.
type DB struct {
	mu           sync.Mutex
	now          time.Time
	cities       map[string]*model.City
	events       map[string]*model.Event
	reservations map[reservationKey]time.Time
	users        map[string]*model.User
	tokens       map[string]tokenRow
}

func NewDB() *DB {
	return &DB{
		now:          time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		cities:       map[string]*model.City{},
		events:       map[string]*model.Event{},
		reservations: map[reservationKey]time.Time{},
		users:        map[string]*model.User{},
		tokens:       map[string]tokenRow{},
	}
}

func (db *DB) tick() time.Time {
	db.now = db.now.Add(time.Millisecond)
	return db.now
}

func (db *DB) Cities() *Cities             { return &Cities{db} }
func (db *DB) Events() *Events             { return &Events{db} }
func (db *DB) Reservations() *Reservations { return &Reservations{db} }
func (db *DB) Users() *Users               { return &Users{db} }
func (db *DB) Tokens() *Tokens             { return &Tokens{db} }

// TokenCount returns the number of recorded tokens.
func (db *DB) TokenCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.tokens)
}

func copyCity(c *model.City) *model.City {
	cp := *c
	return &cp
}

// joined returns a copy of e with its city attached.  Caller holds mu.
func (db *DB) joined(e *model.Event) *model.Event {
	cp := *e
	if c, ok := db.cities[e.CityID]; ok {
		cp.City = copyCity(c)
	}
	return &cp
}

type Cities struct{ db *DB }

func (s *Cities) List(_ context.Context) ([]*model.City, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]*model.City, 0, len(s.db.cities))
	for _, c := range s.db.cities {
		out = append(out, copyCity(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Cities) Create(_ context.Context, c *model.City) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, other := range s.db.cities {
		if other.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = s.db.tick()
	c.UpdatedAt = c.CreatedAt
	s.db.cities[c.ID] = copyCity(c)
	return nil
}

func (s *Cities) GetByID(_ context.Context, id string) (*model.City, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.cities[id]
	if !ok {
		return nil, repository.ErrCityNotFound
	}
	return copyCity(c), nil
}

func (s *Cities) NameTaken(_ context.Context, name, exceptID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, c := range s.db.cities {
		if c.Name == name && id != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Cities) UpdateName(_ context.Context, id, name string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.cities[id]
	if !ok {
		return repository.ErrCityNotFound
	}
	for otherID, other := range s.db.cities {
		if otherID != id && other.Name == name {
			return repository.ErrDuplicate
		}
	}
	c.Name = name
	c.UpdatedAt = s.db.tick()
	return nil
}

func (s *Cities) Delete(_ context.Context, id string) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.cities[id]; !ok {
		return nil, repository.ErrCityNotFound
	}
	var images []string
	for eid, e := range s.db.events {
		if e.CityID != id {
			continue
		}
		if e.Image != nil {
			images = append(images, *e.Image)
		}
		s.db.deleteEventLocked(eid)
	}
	delete(s.db.cities, id)
	sort.Strings(images)
	return images, nil
}

func (db *DB) deleteEventLocked(id string) {
	delete(db.events, id)
	for k := range db.reservations {
		if k.eventID == id {
			delete(db.reservations, k)
		}
	}
}

type Events struct{ db *DB }

func (s *Events) list(keep func(*model.Event) bool, less func(a, b *model.Event) bool) []*model.Event {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]*model.Event, 0)
	for _, e := range s.db.events {
		if keep(e) {
			out = append(out, s.db.joined(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func newestFirst(a, b *model.Event) bool { return a.CreatedAt.After(b.CreatedAt) }

func (s *Events) ListAll(_ context.Context) ([]*model.Event, error) {
	return s.list(func(*model.Event) bool { return true }, newestFirst), nil
}

func (s *Events) ListActive(_ context.Context) ([]*model.Event, error) {
	return s.list(func(e *model.Event) bool { return e.IsActive }, newestFirst), nil
}

func (s *Events) ListActiveByCity(_ context.Context, cityID string) ([]*model.Event, error) {
	return s.list(func(e *model.Event) bool { return e.IsActive && e.CityID == cityID }, newestFirst), nil
}

func (s *Events) ListUpcoming(_ context.Context, from time.Time) ([]*model.Event, error) {
	return s.list(
		func(e *model.Event) bool { return e.IsActive && e.StartDate != nil && !e.StartDate.Before(from) },
		func(a, b *model.Event) bool {
			if !a.StartDate.Equal(*b.StartDate) {
				return a.StartDate.Before(*b.StartDate)
			}
			return newestFirst(a, b)
		}), nil
}

func (s *Events) GetByID(_ context.Context, id string) (*model.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	e, ok := s.db.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return s.db.joined(e), nil
}

func (s *Events) GetActiveByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsActive {
		return nil, repository.ErrEventNotFound
	}
	return e, nil
}

func (s *Events) Create(_ context.Context, e *model.Event) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.cities[e.CityID]; !ok {
		return repository.ErrCityNotFound
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = s.db.tick()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	cp.City = nil
	s.db.events[e.ID] = &cp
	return nil
}

func (s *Events) Update(_ context.Context, e *model.Event) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cur, ok := s.db.events[e.ID]
	if !ok {
		return repository.ErrEventNotFound
	}
	if _, ok := s.db.cities[e.CityID]; !ok {
		return repository.ErrCityNotFound
	}
	cp := *e
	cp.City = nil
	cp.CreatedAt = cur.CreatedAt
	cp.UpdatedAt = s.db.tick()
	s.db.events[e.ID] = &cp
	return nil
}

func (s *Events) ToggleActive(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	e, ok := s.db.events[id]
	if !ok {
		return repository.ErrEventNotFound
	}
	e.IsActive = !e.IsActive
	e.UpdatedAt = s.db.tick()
	return nil
}

func (s *Events) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	s.db.deleteEventLocked(id)
	return nil
}

type Reservations struct{ db *DB }

func (s *Reservations) Create(_ context.Context, userID, eventID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.events[eventID]; !ok {
		return repository.ErrEventNotFound
	}
	k := reservationKey{userID, eventID}
	if _, ok := s.db.reservations[k]; ok {
		return repository.ErrAlreadyReserved
	}
	s.db.reservations[k] = s.db.tick()
	return nil
}

func (s *Reservations) Exists(_ context.Context, userID, eventID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.reservations[reservationKey{userID, eventID}]
	return ok, nil
}

func (s *Reservations) Delete(_ context.Context, userID, eventID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	k := reservationKey{userID, eventID}
	if _, ok := s.db.reservations[k]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(s.db.reservations, k)
	return nil
}

func (s *Reservations) ListByUser(_ context.Context, userID string) ([]*model.ReservedEvent, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]*model.ReservedEvent, 0)
	for k, at := range s.db.reservations {
		if k.userID != userID {
			continue
		}
		e, ok := s.db.events[k.eventID]
		if !ok {
			continue
		}
		out = append(out, &model.ReservedEvent{Event: *s.db.joined(e), ReservedAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservedAt.After(out[j].ReservedAt) })
	return out, nil
}

type Users struct{ db *DB }

func (s *Users) Create(_ context.Context, u *model.User, password string, cost int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, other := range s.db.users {
		if other.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	u.PasswordHash = hash
	u.CreatedAt = s.db.tick()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.db.users[u.ID] = &cp
	return nil
}

func (s *Users) EmailExists(_ context.Context, email string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.db.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *Users) GetByID(_ context.Context, id string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// SetRole changes a stored user's role, as an operator would in the
// users table.
func (s *Users) SetRole(id, role string) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if u, ok := s.db.users[id]; ok {
		u.Role = role
	}
}

type Tokens struct{ db *DB }

func (s *Tokens) Store(_ context.Context, tokenID, userID string, exp time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.tokens[tokenID] = tokenRow{userID: userID, exp: exp}
	return nil
}

func (s *Tokens) Validate(_ context.Context, tokenID string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	row, ok := s.db.tokens[tokenID]
	if !ok || time.Now().After(row.exp) {
		return "", repository.ErrTokenNotFound
	}
	return row.userID, nil
}

func (s *Tokens) Revoke(_ context.Context, tokenID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tokens[tokenID]; !ok {
		return repository.ErrTokenNotFound
	}
	delete(s.db.tokens, tokenID)
	return nil
}

// Images is an in-memory ImageStore.
type Images struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewImages() *Images { return &Images{files: map[string][]byte{}} }

func (s *Images) Put(_ context.Context, path string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = append([]byte(nil), data...)
	return nil
}

func (s *Images) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

// Has reports whether path is stored.
func (s *Images) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return ok
}

// Len returns the number of stored files.
func (s *Images) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
