package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
)

// memUserRepository is an in-memory UserRepository with version checks.
type memUserRepository struct {
	mu    sync.Mutex
	users map[string]entity.User

	// UpdateErr, when set, is returned by Update before fn runs.
	UpdateErr error
	// updates counts successful writes.
	updates int
}

var _ UserRepository = (*memUserRepository)(nil)

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: map[string]entity.User{}}
}

func cloneUser(u entity.User) entity.User {
	out := u
	if u.Sessions != nil {
		out.Sessions = append([]entity.Session(nil), u.Sessions...)
	}
	cp := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := *s
		return &v
	}
	cpTime := func(t *time.Time) *time.Time {
		if t == nil {
			return nil
		}
		v := *t
		return &v
	}
	out.VerificationTokenHash = cp(u.VerificationTokenHash)
	out.ResetTokenHash = cp(u.ResetTokenHash)
	out.RefreshTokenHash = cp(u.RefreshTokenHash)
	out.ResetExpiresAt = cpTime(u.ResetExpiresAt)
	out.LockedUntil = cpTime(u.LockedUntil)
	return out
}

func (r *memUserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrEmailAlreadyExists
		}
	}
	user.Version = 1
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *memUserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

func (r *memUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memUserRepository) FindByHash(_ context.Context, field entity.HashField, hash string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		var v *string
		switch field {
		case entity.HashFieldVerification:
			v = u.VerificationTokenHash
		case entity.HashFieldReset:
			v = u.ResetTokenHash
		case entity.HashFieldRefresh:
			v = u.RefreshTokenHash
		default:
			return nil, fmt.Errorf("unknown hash field %q", field)
		}
		if v != nil && *v == hash {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memUserRepository) Update(ctx context.Context, id string, fn func(user *entity.User) error) (*entity.User, error) {
	if r.UpdateErr != nil {
		return nil, r.UpdateErr
	}
	for attempt := 0; attempt < 5; attempt++ {
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		next := cloneUser(*current)
		if err := fn(&next); err != nil {
			return nil, err
		}

		r.mu.Lock()
		stored, ok := r.users[id]
		if !ok {
			r.mu.Unlock()
			return nil, ErrUserNotFound
		}
		if stored.Version != current.Version {
			r.mu.Unlock()
			continue
		}
		next.Version = current.Version + 1
		r.users[id] = cloneUser(next)
		r.updates++
		r.mu.Unlock()
		return &next, nil
	}
	return nil, ErrConcurrentUpdate
}

func (r *memUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// put stores u as-is, bypassing Create.
func (r *memUserRepository) put(u entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneUser(u)
}

func (r *memUserRepository) get(id string) entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.users[id])
}

// memRevocationStore is an in-memory RevocationStore.
type memRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	err     error
}

var _ RevocationStore = (*memRevocationStore)(nil)

func newMemRevocationStore() *memRevocationStore {
	return &memRevocationStore{entries: map[string]time.Time{}}
}

func (s *memRevocationStore) Insert(_ context.Context, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.entries[tokenHash]; !ok {
		s.entries[tokenHash] = expiresAt
	}
	return nil
}

func (s *memRevocationStore) Exists(_ context.Context, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.entries[tokenHash]
	return ok, nil
}

func (s *memRevocationStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var n int64
	for h, exp := range s.entries {
		if exp.Before(now) {
			delete(s.entries, h)
			n++
		}
	}
	return n, nil
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeCodec issues sequential opaque tokens.
type fakeCodec struct {
	mu    sync.Mutex
	n     int
	clock *fakeClock
	err   error
}

func (c *fakeCodec) Issue(userID string, ttl time.Duration) (string, time.Time, error) {
	if c.err != nil {
		return "", time.Time{}, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("access-%s-%d", userID, c.n), c.clock.Now().Add(ttl), nil
}

// plainHasher "hashes" by prefixing. Good enough to tell hashes from passwords.
type plainHasher struct {
	compares int
}

var errMismatch = errors.New("password mismatch")

func (h *plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *plainHasher) Compare(hash, password string) error {
	h.compares++
	if hash == "" || hash != "hashed:"+password {
		return errMismatch
	}
	return nil
}

type sentMail struct {
	To, Subject, HTML string
}

// recordingMailer keeps every message it is asked to send.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *recordingMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

// linkRenderer renders "<name>|<Link>" so tests can pick tokens out of mails.
type linkRenderer struct{}

func (linkRenderer) Render(name string, vars any) (string, error) {
	m, _ := vars.(map[string]any)
	link, _ := m["Link"].(string)
	return name + "|" + link, nil
}

// tokenFromMail returns the last path segment of the link in a rendered mail.
func tokenFromMail(m sentMail) string {
	i := strings.LastIndex(m.HTML, "/")
	if i < 0 {
		return ""
	}
	return m.HTML[i+1:]
}

// recordingMetrics counts what it is told.
type recordingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	pruned   int
	revoked  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{outcomes: map[string]int{}}
}

func (m *recordingMetrics) LoginOutcome(o string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[o]++
}

func (m *recordingMetrics) SessionsPruned(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruned += n
}

func (m *recordingMetrics) TokensRevoked(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked += n
}
