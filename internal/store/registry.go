package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// UserRegistry holds every User keyed by id. Usernames are unique.
// Methods hand out copies so callers never share a mutable record.
type UserRegistry struct {
	mu    sync.RWMutex
	users map[string]*User
	now   func() time.Time
}

func NewUserRegistry() *UserRegistry {
	return &UserRegistry{
		users: make(map[string]*User),
		now:   time.Now,
	}
}

// Register creates a user. The username scan and the insert share one write
// lock, so two concurrent registrations of the same username cannot both win.
func (r *UserRegistry) Register(name, username, password string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return User{}, ErrUsernameTaken
		}
	}

	u := &User{
		ID:        uuid.NewString(),
		Name:      name,
		Username:  username,
		Password:  password,
		CreatedAt: r.now().UnixMilli(),
	}
	r.users[u.ID] = u
	return *u, nil
}

// Authenticate does an exact, case-sensitive match on both fields.
func (r *UserRegistry) Authenticate(username, password string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username && u.Password == password {
			return *u, nil
		}
	}
	return User{}, ErrInvalidCredentials
}

func (r *UserRegistry) Get(id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return *u, nil
}

func (r *UserRegistry) IncrementSessions(id string) (User, error) {
	return r.update(id, func(u *User) { u.TotalSessions++ })
}

func (r *UserRegistry) SetMastered(id string, value int) (User, error) {
	return r.update(id, func(u *User) { u.MasteredCards = value })
}

func (r *UserRegistry) AddMastered(id string, delta int) (User, error) {
	return r.update(id, func(u *User) { u.MasteredCards += delta })
}

func (r *UserRegistry) update(id string, fn func(u *User)) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	fn(u)
	return *u, nil
}

// All returns a copy of every user, in no particular order.
func (r *UserRegistry) All() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out
}

func (r *UserRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Replace swaps the whole registry for users. Later duplicates of an id win.
func (r *UserRegistry) Replace(users []User) {
	m := make(map[string]*User, len(users))
	for i := range users {
		u := users[i]
		m[u.ID] = &u
	}

	r.mu.Lock()
	r.users = m
	r.mu.Unlock()
}
