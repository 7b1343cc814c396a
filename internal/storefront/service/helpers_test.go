package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/lock"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testIssuer = "storefront-test"

type sentMessage struct {
	address string
	message string
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, address, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentMessage{address: address, message: message})
	return d.err
}

func (d *recordingDispatcher) messages() []sentMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]sentMessage(nil), d.sent...)
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

// lastCode extracts the passcode from the most recent message.
func (d *recordingDispatcher) lastCode(t *testing.T) string {
	t.Helper()
	msgs := d.messages()
	require.NotEmpty(t, msgs)
	code := codePattern.FindString(msgs[len(msgs)-1].message)
	require.NotEmpty(t, code)
	return code
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// sequenceCodes returns its codes in order, then repeats the last one.
type sequenceCodes struct {
	mu    sync.Mutex
	codes []string
}

func (g *sequenceCodes) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	code := g.codes[0]
	if len(g.codes) > 1 {
		g.codes = g.codes[1:]
	}
	return code
}

type testEnv struct {
	store      *sqlite.Store
	clock      *fakeClock
	dispatcher *recordingDispatcher
	keys       *jwtx.KeyManager
	metrics    *Metrics
	directory  *AccountDirectory
	auth       *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	keys, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    testIssuer,
		NumKeys:   1,
	})
	require.NoError(t, err)

	// Tokens are verified against the wall clock, so the fake clock starts
	// near it.
	clock := &fakeClock{t: time.Now().UTC().Truncate(time.Second)}
	metrics := NewMetrics(prometheus.NewRegistry())
	dispatcher := &recordingDispatcher{}

	directory := &AccountDirectory{Store: s, Metrics: metrics, Now: clock.Now}
	auth := &AuthService{
		Store:      s,
		Directory:  directory,
		Generator:  RandomPasscodes{},
		Dispatcher: dispatcher,
		Credentials: &CredentialIssuer{
			Keys:       keys,
			Issuer:     testIssuer,
			AccessTTL:  jwtx.DefaultAccessTokenTTL,
			RefreshTTL: jwtx.DefaultRefreshTokenTTL,
			Now:        clock.Now,
		},
		Hasher:  cryptox.PasswordHasher{Pepper: "test-pepper"},
		Locker:  lock.NewMemory(),
		Metrics: metrics,
		Now:     clock.Now,
	}

	return &testEnv{
		store:      s,
		clock:      clock,
		dispatcher: dispatcher,
		keys:       keys,
		metrics:    metrics,
		directory:  directory,
		auth:       auth,
	}
}
