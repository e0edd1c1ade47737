package mockstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MalcoreHardcore698/authdemo/internal"
	"github.com/MalcoreHardcore698/authdemo/password"
	"github.com/MalcoreHardcore698/authdemo/storage"
)

// Store is the mock user and token registry.
type Store struct {
	backend  storage.Backend
	verifier CredentialVerifier
	logger   *slog.Logger
	seed     []Registration
	newID    func() string
	newToken func() (string, error)

	mu          sync.Mutex
	initialized bool

	// decoy is checked against passwords of unknown emails.
	decoyOnce sync.Once
	decoy     string
}

// Option configures a Store.
type Option func(*Store)

// WithVerifier replaces the default plaintext verifier.
func WithVerifier(v CredentialVerifier) Option {
	return func(s *Store) {
		if v != nil {
			s.verifier = v
		}
	}
}

// WithLogger sets the logger for storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeed replaces DefaultSeed. WithSeed() with no arguments disables
// seeding.
func WithSeed(seed ...Registration) Option {
	return func(s *Store) {
		s.seed = append([]Registration(nil), seed...)
	}
}

// New returns a store over backend. Nothing is read until the first call.
func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		verifier: password.Plaintext{},
		logger:   slog.Default(),
		seed:     DefaultSeed,
		newID:    uuid.NewString,
		newToken: internal.NewToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init seeds the user table when it is empty. It is safe to call any number
// of times; every other operation calls it first.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(ctx)
}

func (s *Store) initLocked(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 && len(s.seed) > 0 {
		for _, reg := range s.seed {
			rec, err := s.newRecord(reg)
			if err != nil {
				return err
			}
			users = append(users, rec)
		}
		s.saveUsers(ctx, users)
	}
	s.initialized = true
	return nil
}

// AuthenticateUser returns the user whose email and password match c. An
// unknown email and a wrong password fail identically.
func (s *Store) AuthenticateUser(ctx context.Context, c Credentials) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInit(ctx)

	users := s.readUsers(ctx)
	i := indexByEmail(users, c.Email)
	if i < 0 {
		s.verifyDecoy(c.Password)
		return User{}, ErrInvalidCredentials
	}

	ok, err := s.verifier.Verify(c.Password, users[i].Password)
	if err != nil {
		s.logger.Warn("stored credential unreadable", "user_id", users[i].ID, "error", err)
		return User{}, ErrInvalidCredentials
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}

	s.maybeUpgrade(ctx, users, i, c.Password)
	return users[i].User, nil
}

// verifyDecoy spends the same verifier work on an unknown email as on a
// known one.
func (s *Store) verifyDecoy(plain string) {
	s.decoyOnce.Do(func() {
		decoy, err := s.verifier.Hash(decoyPassword)
		if err != nil {
			s.logger.Warn("decoy credential hash failed", "error", err)
			return
		}
		s.decoy = decoy
	})
	if s.decoy != "" {
		_, _ = s.verifier.Verify(plain, s.decoy)
	}
}

func (s *Store) maybeUpgrade(ctx context.Context, users []record, i int, plain string) {
	up, ok := s.verifier.(upgrader)
	if !ok {
		return
	}
	needs, err := up.NeedsUpgrade(users[i].Password)
	if err != nil || !needs {
		return
	}
	hashed, err := s.verifier.Hash(plain)
	if err != nil {
		s.logger.Warn("credential rehash failed", "user_id", users[i].ID, "error", err)
		return
	}
	users[i].Password = hashed
	s.saveUsers(ctx, users)
}

// CreateUser registers a new user. Emails are unique, compared without
// regard to case.
func (s *Store) CreateUser(ctx context.Context, r Registration) (User, error) {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return User{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInit(ctx)

	users, err := s.loadUsers(ctx)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if indexByEmail(users, r.Email) >= 0 {
		return User{}, ErrEmailTaken
	}

	rec, err := s.newRecord(r)
	if err != nil {
		return User{}, err
	}
	s.saveUsers(ctx, append(users, rec))
	return rec.User, nil
}

func (s *Store) newRecord(r Registration) (record, error) {
	hashed, err := s.verifier.Hash(r.Password)
	if err != nil {
		return record{}, fmt.Errorf("mockstore: hash password: %w", err)
	}
	return record{
		User: User{
			ID:    s.newID(),
			Name:  strings.TrimSpace(r.Name),
			Email: strings.TrimSpace(r.Email),
		},
		Password: hashed,
	}, nil
}

// FindUserByID looks a user up by id.
func (s *Store) FindUserByID(ctx context.Context, id string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInit(ctx)

	for _, rec := range s.readUsers(ctx) {
		if rec.ID == id {
			return rec.User, true
		}
	}
	return User{}, false
}

// FindUserByEmail looks a user up by email, ignoring case.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInit(ctx)

	users := s.readUsers(ctx)
	if i := indexByEmail(users, email); i >= 0 {
		return users[i].User, true
	}
	return User{}, false
}

// CreateToken binds a fresh token to userID. Tokens are never reused; a
// user may hold any number of them.
func (s *Store) CreateToken(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInit(ctx)

	users, err := s.loadUsers(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	found := false
	for _, rec := range users {
		if rec.ID == userID {
			found = true
			break
		}
	}
	if !found {
		return "", ErrUserNotFound
	}

	tokens, err := s.loadTokens(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	token, err := s.newToken()
	if err != nil {
		return "", fmt.Errorf("mockstore: generate token: %w", err)
	}
	tokens[token] = userID
	s.saveTokens(ctx, tokens)
	return token, nil
}

// GetUserIDByToken resolves a token.
func (s *Store) GetUserIDByToken(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.loadTokens(ctx)
	if err != nil {
		s.logger.Warn("failed to load tokens from storage", "error", err)
		return "", false
	}
	id, ok := tokens[token]
	return id, ok
}

// RemoveTokenUserLink forgets token. Unknown tokens are ignored.
func (s *Store) RemoveTokenUserLink(ctx context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.loadTokens(ctx)
	if err != nil {
		s.logger.Warn("failed to load tokens from storage", "error", err)
		return
	}
	if _, ok := tokens[token]; !ok {
		return
	}
	delete(tokens, token)
	s.saveTokens(ctx, tokens)
}

// DeleteUser removes a user and every token bound to it.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInit(ctx)

	users, err := s.loadUsers(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	tokens, err := s.loadTokens(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	kept := users[:0]
	found := false
	for _, rec := range users {
		if rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		return ErrUserNotFound
	}

	// Tokens first: a crash between the writes leaves a user without
	// tokens, never a token without a user.
	for tok, uid := range tokens {
		if uid == id {
			delete(tokens, tok)
		}
	}
	s.saveTokens(ctx, tokens)
	s.saveUsers(ctx, kept)
	return nil
}

// ClearAll drops both tables. The next operation seeds again.
func (s *Store) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{storage.KeyTokens, storage.KeyUsers} {
		if err := s.backend.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to clear storage", "key", key, "error", err)
		}
	}
	s.initialized = false
}

// ResetPassword pretends to send a reset email to a registered address.
func (s *Store) ResetPassword(ctx context.Context, email string) (string, error) {
	if _, ok := s.FindUserByEmail(ctx, email); !ok {
		return "", ErrEmailNotFound
	}
	return ResetPasswordMessage, nil
}

func (s *Store) ensureInit(ctx context.Context) {
	if err := s.initLocked(ctx); err != nil {
		s.logger.Warn("failed to initialize mock users", "error", err)
	}
}

func (s *Store) loadUsers(ctx context.Context) ([]record, error) {
	var users []record
	if _, err := storage.GetJSON(ctx, s.backend, storage.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// readUsers is loadUsers for read paths: failures are logged and read as an
// empty table.
func (s *Store) readUsers(ctx context.Context) []record {
	users, err := s.loadUsers(ctx)
	if err != nil {
		s.logger.Warn("failed to load users from storage", "error", err)
		return nil
	}
	return users
}

func (s *Store) saveUsers(ctx context.Context, users []record) {
	if err := storage.SetJSON(ctx, s.backend, storage.KeyUsers, users); err != nil {
		s.logger.Warn("failed to save users to storage", "error", err)
	}
}

func (s *Store) loadTokens(ctx context.Context) (map[string]string, error) {
	tokens := map[string]string{}
	if _, err := storage.GetJSON(ctx, s.backend, storage.KeyTokens, &tokens); err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = map[string]string{}
	}
	return tokens, nil
}

func (s *Store) saveTokens(ctx context.Context, tokens map[string]string) {
	if err := storage.SetJSON(ctx, s.backend, storage.KeyTokens, tokens); err != nil {
		s.logger.Warn("failed to save tokens to storage", "error", err)
	}
}

func indexByEmail(users []record, email string) int {
	email = strings.TrimSpace(email)
	for i, rec := range users {
		if strings.EqualFold(rec.Email, email) {
			return i
		}
	}
	return -1
}
