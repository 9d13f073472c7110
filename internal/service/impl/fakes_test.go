package impl

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"xuper/internal/domain"
	"xuper/internal/store"
)

type memoryAccounts struct {
	mu         sync.Mutex
	byID       map[domain.AccountID]*domain.Account
	emailIndex map[string]domain.AccountID

	// beforeCreate lets a test simulate a concurrent insert.
	beforeCreate func(acc *domain.Account)
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{
		byID:       make(map[domain.AccountID]*domain.Account),
		emailIndex: make(map[string]domain.AccountID),
	}
}

func (m *memoryAccounts) Create(ctx context.Context, acc *domain.Account) error {
	if m.beforeCreate != nil {
		m.beforeCreate(acc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.emailIndex[acc.Email]; taken {
		return store.ErrDuplicate
	}
	copy := *acc
	m.byID[acc.ID] = &copy
	m.emailIndex[acc.Email] = acc.ID
	return nil
}

func (m *memoryAccounts) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.byID[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	copy := *acc
	return &copy, nil
}

func (m *memoryAccounts) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emailIndex[email]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	copy := *m.byID[id]
	return &copy, nil
}

func (m *memoryAccounts) List(ctx context.Context) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Account, 0, len(m.byID))
	for _, acc := range m.byID {
		copy := *acc
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memoryAccounts) Delete(ctx context.Context, id domain.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.byID[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	delete(m.emailIndex, acc.Email)
	delete(m.byID, id)
	return nil
}

func (m *memoryAccounts) seed(acc *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *acc
	m.byID[acc.ID] = &copy
	m.emailIndex[acc.Email] = acc.ID
}

type memoryCodes struct {
	mu      sync.Mutex
	records map[string]domain.VerificationCode
	deletes []string
}

func newMemoryCodes() *memoryCodes {
	return &memoryCodes{records: make(map[string]domain.VerificationCode)}
}

func (m *memoryCodes) Upsert(ctx context.Context, v *domain.VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[v.Email] = *v
	return nil
}

func (m *memoryCodes) GetByEmail(ctx context.Context, email string) (*domain.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[email]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return &rec, nil
}

func (m *memoryCodes) Delete(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, email)
	delete(m.records, email)
	return nil
}

func (m *memoryCodes) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for email, rec := range m.records {
		if rec.Expired(now) {
			delete(m.records, email)
			n++
		}
	}
	return n, nil
}

func (m *memoryCodes) has(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[email]
	return ok
}

type memoryDownloads struct {
	mu   sync.Mutex
	recs []*domain.Download
}

func (m *memoryDownloads) Create(ctx context.Context, d *domain.Download) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *d
	m.recs = append(m.recs, &copy)
	return nil
}

func (m *memoryDownloads) ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*domain.Download, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Download
	for _, d := range m.recs {
		if d.AccountID == accountID {
			copy := *d
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *memoryDownloads) DeleteByAccount(ctx context.Context, accountID domain.AccountID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.recs[:0]
	var n int64
	for _, d := range m.recs {
		if d.AccountID == accountID {
			n++
			continue
		}
		kept = append(kept, d)
	}
	m.recs = kept
	return n, nil
}

type sentCode struct {
	to   string
	code string
}

type stubMailer struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

func (s *stubMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentCode{to: to, code: code})
	return s.err
}

func (s *stubMailer) last() (sentCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentCode{}, false
	}
	return s.sent[len(s.sent)-1], true
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// harness wires the real services over in-memory stores.
type harness struct {
	accounts  *memoryAccounts
	codes     *memoryCodes
	downloads *memoryDownloads
	mailer    *stubMailer
	clock     *fakeClock

	verification *VerificationServiceImpl
	tokens       *TokenServiceHS256
	auth         *AuthServiceImpl
}

const testAdminCode = "let-me-admin"

func newHarness() *harness {
	h := &harness{
		accounts:  newMemoryAccounts(),
		codes:     newMemoryCodes(),
		downloads: &memoryDownloads{},
		mailer:    &stubMailer{},
		clock:     newFakeClock(),
	}
	h.verification = NewVerificationServiceImpl(h.accounts, h.codes, h.mailer, DefaultCodeTTL, "test")
	h.verification.Now = h.clock.Now

	h.tokens = NewTokenServiceHS256(TokenConfig{SigningKey: []byte("test-secret")}, h.accounts)
	h.tokens.Now = h.clock.Now

	h.auth = NewAuthServiceImpl(h.accounts, h.downloads, h.verification, NewPasswordServiceBcrypt(4), h.tokens, nil, testAdminCode)
	h.auth.Now = h.clock.Now
	return h
}

// requestCode asks for a code and returns the one handed to the mailer.
func (h *harness) requestCode(t *testing.T, email string) string {
	t.Helper()
	if _, err := h.verification.RequestCode(context.Background(), email); err != nil {
		t.Fatalf("request code for %q: %v", email, err)
	}
	sent, ok := h.mailer.last()
	if !ok {
		t.Fatalf("no code delivered for %q", email)
	}
	return sent.code
}
