package services

import (
	"strings"

	"github.com/cosmiclibrary/core/internal/domain/entities"
)

// CredentialResolver checks logins against the configuration-sourced user
// list. The list is re-parsed on every call and never persisted.
type CredentialResolver struct {
	source string
}

// NewCredentialResolver creates a resolver over a "user:pass,user:pass" list
func NewCredentialResolver(source string) *CredentialResolver {
	return &CredentialResolver{source: source}
}

// Credentials parses the configured list. Pairs without a colon are skipped.
func (r *CredentialResolver) Credentials() []entities.Credential {
	return ParseCredentials(r.source)
}

// UserExists reports whether username is configured
func (r *CredentialResolver) UserExists(username string) bool {
	for _, cred := range r.Credentials() {
		if cred.Username == username {
			return true
		}
	}
	return false
}

// VerifyPassword reports whether the pair matches a configured credential exactly
func (r *CredentialResolver) VerifyPassword(username, password string) bool {
	for _, cred := range r.Credentials() {
		if cred.Username == username && cred.Password == password {
			return true
		}
	}
	return false
}

// ParseCredentials splits a comma-separated list of username:password pairs.
// Each pair is split on its first colon, so passwords may contain colons.
func ParseCredentials(source string) []entities.Credential {
	creds := []entities.Credential{}
	if strings.TrimSpace(source) == "" {
		return creds
	}

	for _, pair := range strings.Split(source, ",") {
		pair = strings.TrimSpace(pair)
		username, password, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		creds = append(creds, entities.Credential{
			Username: strings.TrimSpace(username),
			Password: strings.TrimSpace(password),
		})
	}

	return creds
}
