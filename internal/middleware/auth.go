package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/types"
)

// SessionCookie is the cookie name accepted in place of a bearer token
const SessionCookie = "session"

const sessionKey = "session"

// Session is the authenticated caller carried through a request
type Session struct {
	UserID   uuid.UUID
	Role     string
	UserType string
}

// Claims is the token payload
type Claims struct {
	Role     string `json:"role"`
	UserType string `json:"userType"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 session tokens
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner creates a signer for secret with tokens valid for ttl
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// IssueToken signs a token for the session and returns it with its expiry
func (s *Signer) IssueToken(session Session, now time.Time) (string, time.Time, error) {
	expires := now.Add(s.ttl)
	claims := Claims{
		Role:     session.Role,
		UserType: session.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	return token, expires, err
}

// ParseToken verifies a token and returns its session
func (s *Signer) ParseToken(tok string) (Session, error) {
	t, err := jwt.ParseWithClaims(tok, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Session{}, err
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return Session{}, errors.New("invalid token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Session{}, errors.New("invalid token subject")
	}
	return Session{UserID: id, Role: claims.Role, UserType: claims.UserType}, nil
}

// Authenticate reads the bearer token or session cookie. When required is
// false a missing token lets the request through anonymously, but a bad one is still rejected.
func Authenticate(signer *Signer, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			if required {
				return types.Unauthorized("auth.session", "Authentication required")
			}
			return c.Next()
		}

		session, err := signer.ParseToken(tok)
		if err != nil {
			return types.Unauthorized("auth.session", "Invalid or expired session")
		}
		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// RequireAdmin allows only the Admin role
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s, ok := SessionFrom(c); !ok || s.Role != models.RoleAdmin {
			return types.Forbidden("auth.authorization.admin", "Admin access required")
		}
		return c.Next()
	}
}

// RequireUserType allows only the given user type
func RequireUserType(userType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s, ok := SessionFrom(c); !ok || s.UserType != userType {
			return types.Forbidden("auth.authorization."+userType, "Only "+userType+"s can do this")
		}
		return c.Next()
	}
}

// SessionFrom returns the session stored by Authenticate
func SessionFrom(c *fiber.Ctx) (Session, bool) {
	s, ok := c.Locals(sessionKey).(Session)
	return s, ok
}

// ActorFrom converts the request session into a service actor. The zero
// Actor is returned for anonymous requests.
func ActorFrom(c *fiber.Ctx) services.Actor {
	s, _ := SessionFrom(c)
	return services.Actor{UserID: s.UserID, Role: s.Role, UserType: s.UserType}
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return c.Cookies(SessionCookie)
}
