// Package auth implements password accounts with email confirmation and
// signed session tokens on top of the record store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/model"
)

const (
	MinPasswordLength = 6
	DefaultSessionTTL = 7 * 24 * time.Hour
)

// ProfileEnsurer creates the profile row for a user when it is missing.
type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, user model.User) error
}

type Provider struct {
	store      *db.DB
	secret     []byte
	sessionTTL time.Duration
	baseURL    string
	cost       int
	mailer     Mailer
	profiles   ProfileEnsurer
	log        logrus.FieldLogger
	now        func() time.Time

	dummyOnce sync.Once
	dummy     []byte
}

type Option func(*Provider)

func WithSessionTTL(ttl time.Duration) Option {
	return func(p *Provider) { p.sessionTTL = ttl }
}

// WithBaseURL sets the public address confirmation links point at.
func WithBaseURL(base string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(base, "/") }
}

func WithBcryptCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

func WithMailer(m Mailer) Option {
	return func(p *Provider) { p.mailer = m }
}

func WithProfiles(profiles ProfileEnsurer) Option {
	return func(p *Provider) { p.profiles = profiles }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Provider) { p.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// New builds a provider that signs session tokens with signingKey. The key
// must stay on the server; it is not the anon key clients send.
func New(store *db.DB, signingKey string, opts ...Option) *Provider {
	p := &Provider{
		store:      store,
		secret:     []byte(signingKey),
		sessionTTL: DefaultSessionTTL,
		baseURL:    "http://localhost:8080",
		cost:       bcrypt.DefaultCost,
		log:        logrus.StandardLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.mailer == nil {
		p.mailer = LogMailer{Log: p.log}
	}
	return p
}

// PendingUser is an account that exists but has not confirmed its email.
type PendingUser struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	ConfirmationLink string `json:"-"`
}

type Session struct {
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        model.User `json:"user"`
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SignUp registers an unconfirmed account and mails its confirmation link.
// redirectTo is where the link lands after confirming.
func (p *Provider) SignUp(ctx context.Context, email, password, redirectTo string) (PendingUser, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return PendingUser{}, err
	}
	if len(password) < MinPasswordLength {
		return PendingUser{}, ErrWeakPassword
	}

	_, err = p.store.From("auth_users").Eq("email", email).Single(ctx)
	switch {
	case err == nil:
		return PendingUser{}, ErrEmailTaken
	case !errors.Is(err, db.ErrNotFound):
		return PendingUser{}, fmt.Errorf("look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return PendingUser{}, fmt.Errorf("hash password: %w", err)
	}

	user := PendingUser{ID: uuid.NewString(), Email: email}
	token := uuid.NewString()
	if _, err := p.store.Insert(ctx, "auth_users", db.Row{
		"id":                 user.ID,
		"email":              email,
		"password_hash":      string(hash),
		"confirmation_token": token,
		"redirect_to":        db.Null(redirectTo),
		"email_confirmed_at": nil,
		"created_at":         p.now(),
	}); err != nil {
		return PendingUser{}, fmt.Errorf("create user: %w", err)
	}

	user.ConfirmationLink = p.baseURL + "/auth/confirm?token=" + url.QueryEscape(token)
	if err := p.mailer.SendConfirmation(ctx, email, user.ConfirmationLink); err != nil {
		return PendingUser{}, fmt.Errorf("send confirmation: %w", err)
	}
	return user, nil
}

// Confirm marks the account owning token as verified and returns the
// redirect target recorded at sign-up.
func (p *Provider) Confirm(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}

	rows, err := p.store.From("auth_users").Eq("confirmation_token", token).Update(ctx, db.Row{
		"confirmation_token": nil,
		"email_confirmed_at": p.now(),
	})
	if err != nil {
		return "", fmt.Errorf("confirm user: %w", err)
	}
	if len(rows) == 0 {
		return "", ErrInvalidToken
	}
	return rows[0].String("redirect_to"), nil
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}

	row, err := p.store.From("auth_users").Eq("email", email).Single(ctx)
	if errors.Is(err, db.ErrNotFound) {
		// unknown emails pay the same bcrypt cost as wrong passwords
		_ = bcrypt.CompareHashAndPassword(p.dummyHash(), []byte(password))
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.String("password_hash")), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	confirmedAt, err := row.Time("email_confirmed_at")
	if err != nil {
		return Session{}, err
	}
	if confirmedAt == nil {
		return Session{}, ErrEmailNotConfirmed
	}

	user := model.User{ID: row.String("id"), Email: row.String("email")}
	session, err := p.issueSession(ctx, user)
	if err != nil {
		return Session{}, err
	}

	if p.profiles != nil {
		if err := p.profiles.EnsureProfile(ctx, user); err != nil {
			p.log.WithError(err).WithField("user_id", user.ID).Warn("ensure profile on sign-in")
		}
	}
	return session, nil
}

// CurrentUser resolves a session token to its user. The token must carry a
// valid signature, be unexpired and still have a live session row. The email
// comes from the account row, not from the token.
func (p *Provider) CurrentUser(ctx context.Context, token string) (model.User, error) {
	c, err := p.parse(token, true)
	if err != nil {
		return model.User{}, err
	}

	row, err := p.store.From("auth_sessions").Eq("id", c.ID).Eq("user_id", c.Subject).Single(ctx)
	if errors.Is(err, db.ErrNotFound) {
		return model.User{}, ErrInvalidToken
	}
	if err != nil {
		return model.User{}, fmt.Errorf("look up session: %w", err)
	}

	expiresAt, err := row.Time("expires_at")
	if err != nil {
		return model.User{}, err
	}
	if expiresAt == nil || !p.now().Before(*expiresAt) {
		return model.User{}, ErrInvalidToken
	}

	user, err := p.store.From("auth_users").Eq("id", c.Subject).Single(ctx)
	if errors.Is(err, db.ErrNotFound) {
		return model.User{}, ErrInvalidToken
	}
	if err != nil {
		return model.User{}, fmt.Errorf("look up user: %w", err)
	}
	return model.User{ID: user.String("id"), Email: user.String("email")}, nil
}

// SignOut ends the session behind token. Expired tokens can still sign out
// and signing out twice is not an error.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	c, err := p.parse(token, false)
	if err != nil {
		return err
	}
	if _, err := p.store.From("auth_sessions").Eq("id", c.ID).Delete(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (p *Provider) issueSession(ctx context.Context, user model.User) (Session, error) {
	now := p.now()
	expiresAt := now.Add(p.sessionTTL)
	sessionID := uuid.NewString()

	if _, err := p.store.Insert(ctx, "auth_sessions", db.Row{
		"id":         sessionID,
		"user_id":    user.ID,
		"created_at": now,
		"expires_at": expiresAt,
	}); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	return Session{AccessToken: signed, ExpiresAt: expiresAt, User: user}, nil
}

func (p *Provider) parse(token string, validateClaims bool) (*claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	}
	if !validateClaims {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, options...)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if c.Subject == "" || c.ID == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

func (p *Provider) dummyHash() []byte {
	p.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), p.cost)
		if err != nil {
			p.log.WithError(err).Warn("generate dummy password hash")
		}
		p.dummy = hash
	})
	return p.dummy
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", model.ErrValidation)
	}
	return email, nil
}
