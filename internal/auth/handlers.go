package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// LoginPayload is the expected JSON body for login requests.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

const sessionMaxAge = time.Hour

// LoginHandler checks the supplied credentials and, on success, sets the
// session cookie and returns the token for header-based clients.
func (s *Service) LoginHandler(c *gin.Context) {
	var payload LoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	if payload.Username != s.creds.Username || payload.Password != s.creds.Password {
		s.log.Warn().Str("username", payload.Username).Msg("failed admin login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	// Secure=false: local deployments run without TLS; HttpOnly always.
	c.SetCookie(sessionCookieName, s.token, int(sessionMaxAge.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"token":   s.token,
	})
}

// LogoutHandler clears the session cookie.
func (s *Service) LogoutHandler(c *gin.Context) {
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}
