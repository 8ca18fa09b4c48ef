package auth

import (
	"errors"
	"fmt"
	"strings"
)

// RoleAdmin is the only role a configured account can hold.
const RoleAdmin = "admin"

var ErrInvalidCredentialEntry = errors.New("invalid credential entry")

// Credential is one configured account.
type Credential struct {
	Email        string
	PasswordHash string
	Role         string
}

// CredentialStore holds the accounts allowed to sign in. There are no
// built-in accounts; everything comes from configuration.
type CredentialStore struct {
	byEmail map[string]Credential
}

func NewCredentialStore(creds ...Credential) *CredentialStore {
	s := &CredentialStore{byEmail: make(map[string]Credential, len(creds))}
	for _, c := range creds {
		c.Email = normalizeEmail(c.Email)
		if c.Role == "" {
			c.Role = RoleAdmin
		}
		s.byEmail[c.Email] = c
	}
	return s
}

// ParseCredentials reads "email=bcrypthash,email2=bcrypthash2".
func ParseCredentials(raw string) (*CredentialStore, error) {
	var creds []Credential
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		email, hash, ok := strings.Cut(entry, "=")
		email, hash = strings.TrimSpace(email), strings.TrimSpace(hash)
		if !ok || email == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCredentialEntry, entry)
		}
		if !IsHash(hash) {
			return nil, fmt.Errorf("%w: password for %s is not a bcrypt hash", ErrInvalidCredentialEntry, email)
		}
		creds = append(creds, Credential{Email: email, PasswordHash: hash, Role: RoleAdmin})
	}
	return NewCredentialStore(creds...), nil
}

func (s *CredentialStore) Lookup(email string) (Credential, bool) {
	c, ok := s.byEmail[normalizeEmail(email)]
	return c, ok
}

func (s *CredentialStore) Len() int {
	return len(s.byEmail)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
