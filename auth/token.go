package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/michaelk046/ComicManager/apperror"
)

const (
	tokenIssuer          = "comic-manager"
	defaultTokenDuration = 30 * time.Minute
)

// credentialsMessage is the single user-facing message for every token and
// login failure. Callers must not learn which check failed.
const credentialsMessage = "could not validate credentials"

// TokenService issues and verifies signed, time-limited bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService signing with secret. A non-positive
// ttl falls back to the 30 minute default.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenDuration
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue produces an HS256-signed token whose subject is the user id and
// whose expiry is now plus the configured lifetime.
func (s *TokenService) Issue(userID int) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperror.NewInternalError("failed to sign token", err)
	}
	return signed, nil
}

// Verify validates the token signature and expiry and returns the subject
// user id. Every failure mode (malformed token, bad signature, expiry,
// missing subject) maps to the same authentication error.
func (s *TokenService) Verify(tokenString string) (int, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, apperror.NewAuthError(credentialsMessage, err)
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID <= 0 {
		return 0, apperror.NewAuthError(credentialsMessage, err)
	}

	return userID, nil
}
