package auth

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/model"
)

const testSigningKey = "server-signing-key"

type captureMailer struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *captureMailer) SendConfirmation(_ context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[email] = link
	return nil
}

type recordingProfiles struct {
	users []model.User
}

func (r *recordingProfiles) EnsureProfile(_ context.Context, user model.User) error {
	r.users = append(r.users, user)
	return nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestProvider(t *testing.T, opts ...Option) (*Provider, *captureMailer, *clock) {
	t.Helper()
	store, err := db.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	mailer := &captureMailer{links: map[string]string{}}
	c := &clock{now: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)}
	base := []Option{
		WithBcryptCost(bcrypt.MinCost),
		WithMailer(mailer),
		WithClock(c.Now),
		WithBaseURL("http://tasks.test/"),
		WithSessionTTL(time.Hour),
	}
	return New(store, testSigningKey, append(base, opts...)...), mailer, c
}

func confirmationToken(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/auth/confirm", parsed.Path)
	return parsed.Query().Get("token")
}

func TestSignUpConfirmSignInFlow(t *testing.T) {
	profiles := &recordingProfiles{}
	provider, mailer, _ := newTestProvider(t, WithProfiles(profiles))
	ctx := context.Background()

	pending, err := provider.SignUp(ctx, " Alice@Example.com ", "secret1", "http://tasks.test/")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", pending.Email)
	require.Contains(t, mailer.links, "alice@example.com")
	assert.Equal(t, pending.ConfirmationLink, mailer.links["alice@example.com"])

	_, err = provider.SignInWithPassword(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)

	redirect, err := provider.Confirm(ctx, confirmationToken(t, pending.ConfirmationLink))
	require.NoError(t, err)
	assert.Equal(t, "http://tasks.test/", redirect)

	session, err := provider.SignInWithPassword(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, pending.ID, session.User.ID)
	assert.NotEmpty(t, session.AccessToken)
	require.Len(t, profiles.users, 1)
	assert.Equal(t, pending.ID, profiles.users[0].ID)

	user, err := provider.CurrentUser(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, model.User{ID: pending.ID, Email: "alice@example.com"}, user)

	require.NoError(t, provider.SignOut(ctx, session.AccessToken))
	_, err = provider.CurrentUser(ctx, session.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.NoError(t, provider.SignOut(ctx, session.AccessToken))
}

func TestConfirmTokenIsSingleUse(t *testing.T) {
	provider, _, _ := newTestProvider(t)
	ctx := context.Background()

	pending, err := provider.SignUp(ctx, "bob@example.com", "secret1", "")
	require.NoError(t, err)
	token := confirmationToken(t, pending.ConfirmationLink)

	_, err = provider.Confirm(ctx, token)
	require.NoError(t, err)
	_, err = provider.Confirm(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = provider.Confirm(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignUpValidation(t *testing.T) {
	provider, _, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.SignUp(ctx, "carol@example.com", "12345", "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = provider.SignUp(ctx, "not-an-email", "secret1", "")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = provider.SignUp(ctx, "carol@example.com", "secret1", "")
	require.NoError(t, err)
	_, err = provider.SignUp(ctx, "Carol@Example.com", "another1", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	provider, _, _ := newTestProvider(t)
	ctx := context.Background()

	pending, err := provider.SignUp(ctx, "dan@example.com", "secret1", "")
	require.NoError(t, err)
	_, err = provider.Confirm(ctx, confirmationToken(t, pending.ConfirmationLink))
	require.NoError(t, err)

	_, err = provider.SignInWithPassword(ctx, "dan@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = provider.SignInWithPassword(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCurrentUserRejectsExpiredAndForeignTokens(t *testing.T) {
	provider, _, c := newTestProvider(t)
	ctx := context.Background()

	pending, err := provider.SignUp(ctx, "erin@example.com", "secret1", "")
	require.NoError(t, err)
	_, err = provider.Confirm(ctx, confirmationToken(t, pending.ConfirmationLink))
	require.NoError(t, err)
	session, err := provider.SignInWithPassword(ctx, "erin@example.com", "secret1")
	require.NoError(t, err)

	other := New(provider.store, "different-key", WithClock(c.Now))
	_, err = other.CurrentUser(ctx, session.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = provider.CurrentUser(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	c.now = c.now.Add(2 * time.Hour)
	_, err = provider.CurrentUser(ctx, session.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.NoError(t, provider.SignOut(ctx, session.AccessToken))
}

func signedInSession(t *testing.T, provider *Provider, email string) Session {
	t.Helper()
	ctx := context.Background()
	pending, err := provider.SignUp(ctx, email, "secret1", "")
	require.NoError(t, err)
	_, err = provider.Confirm(ctx, confirmationToken(t, pending.ConfirmationLink))
	require.NoError(t, err)
	session, err := provider.SignInWithPassword(ctx, email, "secret1")
	require.NoError(t, err)
	return session
}

func resign(t *testing.T, token, key string, edit func(*claims)) string {
	t.Helper()
	c := &claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, c)
	require.NoError(t, err)
	edit(c)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestCurrentUserIgnoresEditedEmailClaim(t *testing.T) {
	provider, _, _ := newTestProvider(t)
	ctx := context.Background()
	session := signedInSession(t, provider, "mallory@example.com")

	changeEmail := func(c *claims) { c.Email = "ceo@example.com" }

	forged := resign(t, session.AccessToken, "anon-key", changeEmail)
	_, err := provider.CurrentUser(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// even a correctly signed token cannot choose its own email
	edited := resign(t, session.AccessToken, testSigningKey, changeEmail)
	user, err := provider.CurrentUser(ctx, edited)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, user.ID)
	assert.Equal(t, "mallory@example.com", user.Email)
}

func TestSignInUnknownEmailStillComparesHash(t *testing.T) {
	provider, _, _ := newTestProvider(t)
	_, err := provider.SignInWithPassword(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotEmpty(t, provider.dummyHash())
}
