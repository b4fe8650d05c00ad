package utils // package utils provides helper functions for token creation and captcha generation

import (
    "errors"
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Token represents a signed JWT along with its expiry.  The Token field
// contains the JWT string.  Exp stores the expiration timestamp.  Access
// tokens are short-lived and sent in the Authorization header; refresh
// tokens are longer-lived and exchanged for fresh access tokens.  Both
// are stateless: nothing is stored server-side.
type Token struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims carried by both token kinds.  Typ distinguishes access from
// refresh so one cannot be replayed as the other.
type Claims struct {
    UserID  uint64 `json:"uid"`
    IsAdmin bool   `json:"adm"`
    Typ     string `json:"typ"` // "access" or "refresh"
    jwt.RegisteredClaims
}

// ErrInvalidToken is returned for tokens that fail signature or shape
// validation, including a mismatched typ claim.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT identifying a user for
// ttlMin minutes.
func NewAccessToken(secret string, userID uint64, isAdmin bool, ttlMin int) (Token, error) {
    return newToken(secret, userID, isAdmin, "access", time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken builds and signs an HS256 refresh JWT valid for
// ttlDays days.
func NewRefreshToken(secret string, userID uint64, isAdmin bool, ttlDays int) (Token, error) {
    return newToken(secret, userID, isAdmin, "refresh", time.Duration(ttlDays)*24*time.Hour)
}

func newToken(secret string, userID uint64, isAdmin bool, typ string, ttl time.Duration) (Token, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := Claims{
        UserID:  userID,
        IsAdmin: isAdmin,
        Typ:     typ,
        RegisteredClaims: jwt.RegisteredClaims{
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return Token{}, err
    }
    return Token{Token: signed, Exp: exp}, nil
}

// ParseToken validates a signed JWT of the expected typ ("access" or
// "refresh") and returns its claims.
func ParseToken(secret, raw, typ string) (*Claims, error) {
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid || claims.Typ != typ {
        return nil, ErrInvalidToken
    }
    return claims, nil
}
