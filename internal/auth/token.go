package auth

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/config"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/golang-jwt/jwt/v4"
)

// Claims identifies the operator behind a verified bearer token
type Claims struct {
	UserID string
	Email  string
	Role   types.Role
}

// TokenProvider verifies HS256 bearer tokens issued by the session layer
type TokenProvider struct {
	secret []byte
}

func NewTokenProvider(cfg *config.Configuration) *TokenProvider {
	return &TokenProvider{secret: []byte(cfg.Auth.Secret)}
}

func (p *TokenProvider) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewErrorf("unexpected signing method: %v", token.Header["alg"]).
				WithHint("Invalid token").
				Mark(ierr.ErrPermissionDenied)
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Token parse error").
			Mark(ierr.ErrPermissionDenied)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrPermissionDenied)
	}

	email, _ := claims["email"].(string)

	// tokens minted before roles existed fall back to the least privileged role
	role := types.RoleUser
	if raw, ok := claims["role"].(string); ok && raw != "" {
		role = types.Role(raw)
		if err := role.Validate(); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Token carries an unknown role").
				Mark(ierr.ErrPermissionDenied)
		}
	}

	return &Claims{UserID: userID, Email: email, Role: role}, nil
}

// GenerateToken signs a token for the given operator, valid for ttl
func (p *TokenProvider) GenerateToken(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    string(claims.Role),
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	})
	return token.SignedString(p.secret)
}
