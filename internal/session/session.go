package session

import (
	"context"       // Context for store calls
	"crypto/subtle" // Constant-time token comparison
	"errors"        // Error values
	"fmt"           // Error wrapping
	"net/http"      // Cookies
	"strings"       // Token formatting
	"time"          // Session lifetime

	"blog_system/internal/utils" // Session cookie signing

	"github.com/google/uuid"     // Session ids and tokens
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Flash categories
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

// Session is the state of one visitor for the duration of a request
type Session struct {
	id        string
	data      Data
	dirty     bool
	rotate    bool
	destroyed bool
}

// ID returns the server-side id, empty until the session is first saved
func (s *Session) ID() string { return s.id }

// UserID returns the logged in user's id or zero
func (s *Session) UserID() uint { return s.data.UserID }

// Login binds the session to a user. The id is replaced on save.
func (s *Session) Login(userID uint) {
	s.data.UserID = userID
	s.rotate = true
	s.dirty = true
}

// ForgetUser drops a user id that no longer resolves to a row
func (s *Session) ForgetUser() {
	if s.data.UserID != 0 {
		s.data.UserID = 0
		s.dirty = true
	}
}

// CSRFToken returns the form token bound to this session, creating it on first use
func (s *Session) CSRFToken() string {
	if s.data.CSRFToken == "" {
		s.data.CSRFToken = strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
		s.dirty = true
	}
	return s.data.CSRFToken
}

// ValidCSRFToken compares token against the session's token in constant time
func (s *Session) ValidCSRFToken(token string) bool {
	if s.data.CSRFToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.data.CSRFToken), []byte(token)) == 1
}

// Destroy ends the session; the store entry and cookie go away on save
func (s *Session) Destroy() {
	s.data = Data{}
	s.destroyed = true
	s.dirty = true
}

// AddFlash queues a message for the next rendered page
func (s *Session) AddFlash(category, message string) {
	s.data.Flashes = append(s.data.Flashes, Flash{Category: category, Message: message})
	s.dirty = true
}

// PopFlashes returns and clears the queued messages
func (s *Session) PopFlashes() []Flash {
	flashes := s.data.Flashes
	if len(flashes) > 0 {
		s.data.Flashes = nil
		s.dirty = true
	}
	return flashes
}

// Options configures a Manager
type Options struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
}

// Manager loads sessions from requests and persists them before the response is written
type Manager struct {
	store Store
	opts  Options
}

// NewManager creates a Manager
func NewManager(store Store, opts Options) (*Manager, error) {
	if opts.Secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if opts.CookieName == "" {
		opts.CookieName = "blog_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, opts: opts}, nil
}

// Load resolves the request's session. A missing, forged or expired cookie
// yields a fresh empty session.
func (m *Manager) Load(r *http.Request) *Session {
	s := &Session{}
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil || c.Value == "" {
		return s
	}
	sid, err := utils.ParseSessionID(c.Value, m.opts.Secret)
	if err != nil {
		logrus.WithError(err).Debug("Ignoring session cookie") // Forged or expired
		return s
	}
	data, err := m.store.Load(r.Context(), sid)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logrus.WithError(err).Warn("Failed to load session")
		}
		return s
	}
	s.id = sid
	s.data = *data
	return s
}

// Save persists a modified session and refreshes the cookie. It must run
// before the response body is written.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if !s.dirty {
		return nil // Nothing changed, keep the cookie as is
	}
	if s.destroyed {
		var err error
		if s.id != "" {
			err = m.store.Delete(ctx, s.id)
		}
		m.expireCookie(w)
		*s = Session{}
		return err
	}
	if s.rotate || s.id == "" {
		if s.id != "" {
			if err := m.store.Delete(ctx, s.id); err != nil {
				logrus.WithError(err).Warn("Failed to drop rotated session")
			}
		}
		s.id = uuid.NewString() // Fresh id, the old one is never reused
		s.rotate = false
	}
	// Persist the data, then hand the client a signed cookie naming it
	if err := m.store.Save(ctx, s.id, &s.data, m.opts.TTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	token, err := utils.SignSessionID(s.id, m.opts.Secret, m.opts.TTL)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.dirty = false
	return nil
}

func (m *Manager) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
