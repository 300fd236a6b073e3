package records

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vk/ednavoyage/internal/ctxlog"
	"github.com/vk/ednavoyage/internal/docstore"
)

// Role is the kind of account a user registered as.
type Role string

const (
	RoleResearcher  Role = "researcher"
	RoleStudent     Role = "student"
	RoleInstitution Role = "institution"
	RoleAdmin       Role = "admin"
)

// Roles lists every defined role.
func Roles() []Role {
	return []Role{RoleResearcher, RoleStudent, RoleInstitution, RoleAdmin}
}

// Valid reports whether r is a defined role.
func (r Role) Valid() bool {
	switch r {
	case RoleResearcher, RoleStudent, RoleInstitution, RoleAdmin:
		return true
	}
	return false
}

// Profile is the user-editable part of an account.
type Profile struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	Avatar            string `json:"avatar,omitempty"`
	Role              Role   `json:"role"`
	Institution       string `json:"institution,omitempty"`
	Location          string `json:"location,omitempty"`
	Bio               string `json:"bio,omitempty"`
	Publications      string `json:"publications,omitempty"`
	Citations         string `json:"citations,omitempty"`
	CreatedProjects   string `json:"createdProjects,omitempty"`
	Countries         string `json:"countries,omitempty"`
	RecentDiscoveries string `json:"recentDiscoveries,omitempty"`
}

// User is a registered account.
type User struct {
	ID string `json:"id"`
	Profile
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

// ProfileUpdate is a partial profile; nil fields are left unchanged.
type ProfileUpdate struct {
	Name              *string `json:"name,omitempty"`
	Avatar            *string `json:"avatar,omitempty"`
	Role              *Role   `json:"role,omitempty"`
	Institution       *string `json:"institution,omitempty"`
	Location          *string `json:"location,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	Publications      *string `json:"publications,omitempty"`
	Citations         *string `json:"citations,omitempty"`
	CreatedProjects   *string `json:"createdProjects,omitempty"`
	Countries         *string `json:"countries,omitempty"`
	RecentDiscoveries *string `json:"recentDiscoveries,omitempty"`
}

func (u ProfileUpdate) validate() error {
	if u.Role != nil && !u.Role.Valid() {
		return fmt.Errorf("%w: role %q", ErrInvalidValue, *u.Role)
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	return nil
}

func (u ProfileUpdate) apply(p *Profile) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Name, u.Name)
	set(&p.Avatar, u.Avatar)
	set(&p.Institution, u.Institution)
	set(&p.Location, u.Location)
	set(&p.Bio, u.Bio)
	set(&p.Publications, u.Publications)
	set(&p.Citations, u.Citations)
	set(&p.CreatedProjects, u.CreatedProjects)
	set(&p.Countries, u.Countries)
	set(&p.RecentDiscoveries, u.RecentDiscoveries)
	if u.Role != nil {
		p.Role = *u.Role
	}
}

// Users manages the account list and the single signed-in session.
type Users struct {
	deps
	mu      sync.Mutex
	users   *docstore.Document[[]User]
	session *docstore.Document[*User]
	auth    *docstore.Document[bool]
}

// NewUsers returns a user service over store.
func NewUsers(store docstore.Store, opts ...Option) *Users {
	return &Users{
		deps:    newDeps(opts),
		users:   docstore.NewDocument[[]User](store, KeyUsers, nil),
		session: docstore.NewDocument[*User](store, KeySessionUser, nil),
		auth:    docstore.NewDocument[bool](store, KeySessionAuth, nil),
	}
}

// Current returns the signed-in user. The session counts only when both the
// user record and the auth flag are present.
func (s *Users) Current(ctx context.Context) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(ctx)
}

func (s *Users) currentLocked(ctx context.Context) (User, bool) {
	user, _ := s.session.Load(ctx)
	authed, _ := s.auth.Load(ctx)
	if user == nil || !authed {
		return User{}, false
	}
	return *user, true
}

// List returns every registered account.
func (s *Users) List(ctx context.Context) []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, _ := s.users.Load(ctx)
	return users
}

// Signup registers a new account and signs it in. An empty role defaults to
// researcher.
func (s *Users) Signup(ctx context.Context, p Profile) (User, error) {
	p.Email = strings.TrimSpace(p.Email)
	p.Name = strings.TrimSpace(p.Name)
	if p.Email == "" {
		return User{}, fmt.Errorf("%w: email", ErrMissingField)
	}
	if p.Name == "" {
		return User{}, fmt.Errorf("%w: name", ErrMissingField)
	}
	if p.Role == "" {
		p.Role = RoleResearcher
	}
	if !p.Role.Valid() {
		return User{}, fmt.Errorf("%w: role %q", ErrInvalidValue, p.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, _ := s.users.Load(ctx)
	for _, u := range users {
		if u.Email == p.Email {
			return User{}, ErrEmailTaken
		}
	}

	now := s.clock.Now().UTC()
	user := User{ID: "user-" + s.newID(), Profile: p, CreatedAt: now, LastLogin: now}
	if err := s.users.Save(ctx, append(users, user)); err != nil {
		return User{}, err
	}
	if err := s.startSession(ctx, user); err != nil {
		return User{}, err
	}
	ctxlog.FromContext(ctx).Info("User signed up.", "user", user.ID, "role", string(user.Role))
	return user, nil
}

// Login signs in the account registered under email. No password is checked.
// The last-login time is refreshed on the session copy only.
func (s *Users) Login(ctx context.Context, email string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, fmt.Errorf("%w: email", ErrMissingField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, _ := s.users.Load(ctx)
	for _, u := range users {
		if u.Email != email {
			continue
		}
		u.LastLogin = s.clock.Now().UTC()
		if err := s.startSession(ctx, u); err != nil {
			return User{}, err
		}
		ctxlog.FromContext(ctx).Info("User logged in.", "user", u.ID)
		return u, nil
	}
	return User{}, ErrUnknownUser
}

// Logout ends the session. Logging out without a session is a no-op.
func (s *Users) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	return s.auth.Clear(ctx)
}

// UpdateProfile applies update to the signed-in user and to its entry in the
// account list.
func (s *Users) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	if err := update.validate(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.currentLocked(ctx)
	if !ok {
		return User{}, ErrNotAuthenticated
	}
	update.apply(&current.Profile)
	if err := s.session.Save(ctx, &current); err != nil {
		return User{}, err
	}

	users, _ := s.users.Load(ctx)
	for i := range users {
		if users[i].ID == current.ID {
			update.apply(&users[i].Profile)
		}
	}
	if err := s.users.Save(ctx, users); err != nil {
		return User{}, err
	}
	return current, nil
}

func (s *Users) startSession(ctx context.Context, u User) error {
	if err := s.session.Save(ctx, &u); err != nil {
		return err
	}
	return s.auth.Save(ctx, true)
}
