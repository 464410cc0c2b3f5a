package middleware

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

// TokenIssuer identifies the service that issues all access tokens.
const TokenIssuer = "StaySpot"

// ValidateToken checks the token's RS256 signature and standard claims.
// Any deviation returns a descriptive error.
func ValidateToken(tokenString string, publicKey *rsa.PublicKey) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return publicKey, nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return token, nil
}

// ActorFromClaims extracts the caller identity. Tokens without a role are
// treated as tenants, the least privileged role.
func ActorFromClaims(claims jwt.MapClaims) (models.Actor, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return models.Actor{}, errors.New("missing subject")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return models.Actor{}, errors.New("subject is not a uuid")
	}
	role := models.RoleTenant
	if raw, ok := claims["role"].(string); ok && raw != "" {
		role = models.Role(raw)
	}
	if !role.Valid() || role == models.RoleSystem {
		return models.Actor{}, errors.New("invalid role claim")
	}
	return models.Actor{ID: id, Role: role}, nil
}

// IssueToken mints an access token. Used by seeding and tests; production
// tokens come from the auth service.
func IssueToken(key *rsa.PrivateKey, actor models.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  actor.ID.String(),
		"role": string(actor.Role),
		"iss":  TokenIssuer,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
}
