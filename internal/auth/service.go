package auth

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionRevoked     = errors.New("session has been signed out")
)

type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

// Event is delivered to subscribers after a sign-in or sign-out.
type Event struct {
	Type  EventType
	Email string
	At    time.Time
}

type Listener func(Event)

// Session is the result of a successful sign-in.
type Session struct {
	Token     string    `json:"-"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service is the identity service: password sign-in against the configured
// credential store, session lookup, sign-out and change subscription.
type Service struct {
	creds *CredentialStore
	jwt   *JWTService

	mu        sync.Mutex
	revoked   map[string]time.Time // jti -> token expiry
	listeners map[int]Listener
	nextID    int

	now func() time.Time
}

func NewService(creds *CredentialStore, jwt *JWTService) *Service {
	return &Service{
		creds:     creds,
		jwt:       jwt,
		revoked:   make(map[string]time.Time),
		listeners: make(map[int]Listener),
		now:       time.Now,
	}
}

func (s *Service) SignIn(email, password string) (Session, error) {
	cred, ok := s.creds.Lookup(email)
	if !ok || !CheckPassword(password, cred.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	token, claims, err := s.jwt.GenerateSessionToken(cred.Email, cred.Role)
	if err != nil {
		return Session{}, err
	}

	s.notify(Event{Type: SignedIn, Email: cred.Email, At: s.now()})
	return Session{
		Token:     token,
		Email:     cred.Email,
		Role:      cred.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Session returns the claims of a live session.
func (s *Service) Session(token string) (*Claims, error) {
	claims, err := s.jwt.ValidateSessionToken(token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

// SignOut revokes the session. Signing out twice is not an error.
func (s *Service) SignOut(token string) error {
	claims, err := s.Session(token)
	if errors.Is(err, ErrSessionRevoked) {
		return nil
	}
	if err != nil {
		return err
	}

	now := s.now()
	s.mu.Lock()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	s.mu.Unlock()

	s.notify(Event{Type: SignedOut, Email: claims.Email, At: now})
	return nil
}

// Subscribe registers fn for sign-in/sign-out events and returns a function
// that removes it.
func (s *Service) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) notify(evt Event) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(evt)
	}
}
