// Package userstore is an in-memory account directory implementing
// authjwt.Authenticator and authjwt.UserLookup over argon2id password hashes.
// It backs the reference server and tests; production deployments plug in
// their own user database behind the same two interfaces.
package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MrEthical07/authjwt"
	"github.com/MrEthical07/authjwt/password"
)

// Status is the lifecycle state of an account.
type Status int

const (
	StatusActive Status = iota
	StatusDisabled
	StatusDeleted
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusDisabled:
		return "disabled"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

var (
	// ErrDuplicateUsername is returned by Add for a username already registered.
	ErrDuplicateUsername = errors.New("username already registered")
	// ErrUnknownSubject is returned by mutators for a subject that was never added.
	ErrUnknownSubject = errors.New("unknown subject")
)

// User is a snapshot of an account. The password hash is never exposed.
type User struct {
	Subject  string
	Username string
	Role     string
	Status   Status
}

type account struct {
	User
	hash string
}

// Store is safe for concurrent use.
type Store struct {
	hasher *password.Hasher
	// dummy is compared against for unknown usernames so lookups of missing
	// accounts cost the same as wrong passwords.
	dummy string

	mu         sync.RWMutex
	byUsername map[string]*account
	bySubject  map[string]*account
}

// New returns an empty Store hashing with hasher.
func New(hasher *password.Hasher) (*Store, error) {
	if hasher == nil {
		return nil, errors.New("userstore: hasher required")
	}
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("userstore: %w", err)
	}
	return &Store{
		hasher:     hasher,
		dummy:      dummy,
		byUsername: make(map[string]*account),
		bySubject:  make(map[string]*account),
	}, nil
}

// Add registers an active account and returns it with a generated subject.
// Usernames are matched case-insensitively.
func (s *Store) Add(username, plaintext, role string) (User, error) {
	key := normalize(username)
	if key == "" {
		return User{}, errors.New("userstore: username required")
	}
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return User{}, fmt.Errorf("userstore: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUsername[key]; ok {
		return User{}, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
	}
	acc := &account{
		User: User{
			Subject:  uuid.NewString(),
			Username: strings.TrimSpace(username),
			Role:     role,
			Status:   StatusActive,
		},
		hash: hash,
	}
	s.byUsername[key] = acc
	s.bySubject[acc.Subject] = acc
	return acc.User, nil
}

// DefaultRole is assigned to self-registered accounts.
const DefaultRole = "USER"

// Register adds an account with DefaultRole on behalf of a sign-up request.
func (s *Store) Register(ctx context.Context, username, plaintext string) (authjwt.Principal, error) {
	if err := ctx.Err(); err != nil {
		return authjwt.Principal{}, err
	}
	u, err := s.Add(username, plaintext, DefaultRole)
	if err != nil {
		return authjwt.Principal{}, err
	}
	return authjwt.Principal{Subject: u.Subject, Role: u.Role}, nil
}

// SetStatus changes the account state of subject.
func (s *Store) SetStatus(subject string, status Status) error {
	return s.update(subject, func(acc *account) { acc.Status = status })
}

// SetRole changes the role of subject. Gate evaluations pick it up on the next
// request; refresh records keep the role captured at login.
func (s *Store) SetRole(subject, role string) error {
	return s.update(subject, func(acc *account) { acc.Role = role })
}

// Get returns the account for subject.
func (s *Store) Get(subject string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.bySubject[subject]
	if !ok {
		return User{}, false
	}
	return acc.User, true
}

// Authenticate implements authjwt.Authenticator. The password is verified
// before the account state so callers without the password learn nothing about
// the account.
func (s *Store) Authenticate(ctx context.Context, username, plaintext string) (authjwt.Principal, error) {
	if err := ctx.Err(); err != nil {
		return authjwt.Principal{}, err
	}

	s.mu.RLock()
	acc, ok := s.byUsername[normalize(username)]
	var snapshot account
	if ok {
		snapshot = *acc
	}
	s.mu.RUnlock()

	if !ok {
		_ = s.hasher.Compare(plaintext, s.dummy)
		return authjwt.Principal{}, authjwt.ErrBadCredentials
	}
	if err := s.hasher.Compare(plaintext, snapshot.hash); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return authjwt.Principal{}, authjwt.ErrBadCredentials
		}
		return authjwt.Principal{}, fmt.Errorf("userstore: stored hash for %s: %w", snapshot.Subject, err)
	}

	switch snapshot.Status {
	case StatusDeleted:
		return authjwt.Principal{}, authjwt.ErrUserDeleted
	case StatusDisabled:
		return authjwt.Principal{}, authjwt.ErrUserDisabled
	}
	return authjwt.Principal{Subject: snapshot.Subject, Role: snapshot.Role}, nil
}

// FindBySubject implements authjwt.UserLookup. Deleted accounts are reported as
// not found and disabled accounts as disabled.
func (s *Store) FindBySubject(ctx context.Context, subject string) (authjwt.Principal, error) {
	if err := ctx.Err(); err != nil {
		return authjwt.Principal{}, err
	}
	u, ok := s.Get(subject)
	if !ok || u.Status == StatusDeleted {
		return authjwt.Principal{}, authjwt.ErrUserNotFound
	}
	if u.Status == StatusDisabled {
		return authjwt.Principal{}, authjwt.ErrUserDisabled
	}
	return authjwt.Principal{Subject: u.Subject, Role: u.Role}, nil
}

func (s *Store) update(subject string, fn func(*account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.bySubject[subject]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	fn(acc)
	return nil
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
