package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// AdminClaims is the identity carried by an admin access token.  Superadmin
// tokens hold ["ALL"] for both privileges and sections.
type AdminClaims struct {
	Subject    string   `json:"sub"`
	Role       string   `json:"role"`
	Name       string   `json:"name"`
	Privileges []string `json:"privileges"`
	Sections   []string `json:"sections"`
	Status     string   `json:"status"`
}

// ErrInvalidToken is returned for malformed, expired or foreign tokens.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for an admin.  The JWT
// carries the admin claims plus expiration (exp) and issued at (iat).
func NewAccessToken(secret string, c AdminClaims, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":        c.Subject,
		"role":       c.Role,
		"name":       c.Name,
		"privileges": nonNil(c.Privileges),
		"sections":   nonNil(c.Sections),
		"status":     c.Status,
		"exp":        exp.Unix(),
		"iat":        now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw with secret and returns its claims.  Only
// HMAC-signed tokens are accepted.
func ParseAccessToken(secret, raw string) (AdminClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return AdminClaims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AdminClaims{}, ErrInvalidToken
	}
	c := AdminClaims{
		Subject:    str(mc["sub"]),
		Role:       str(mc["role"]),
		Name:       str(mc["name"]),
		Privileges: strs(mc["privileges"]),
		Sections:   strs(mc["sections"]),
		Status:     str(mc["status"]),
	}
	if c.Subject == "" {
		return AdminClaims{}, ErrInvalidToken
	}
	return c, nil
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

// strs converts a decoded JSON array; non-string items are skipped.
func strs(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, x := range arr {
		if s, ok := x.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
