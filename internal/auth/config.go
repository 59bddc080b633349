// Package auth guards the admin API surface with a credential login and a
// per-process session token, delivered as a cookie or bearer header.
package auth

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const sessionCookieName = "admin_session_token"

// Credentials holds the admin username and password. Plain text, supplied
// by configuration.
type Credentials struct {
	Username string
	Password string
}

// Service authenticates admin requests. The session token is minted once at
// startup, so restarting the server invalidates existing sessions.
type Service struct {
	creds Credentials
	token string
	log   zerolog.Logger
}

// NewService builds an auth service for the given credentials.
func NewService(creds Credentials, log zerolog.Logger) (*Service, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("auth: admin username and password must be configured")
	}
	return &Service{
		creds: creds,
		token: uuid.NewString(),
		log:   log,
	}, nil
}
