package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	stderrors "errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"hrintake/internal/config"
	"hrintake/internal/errors"
	"hrintake/internal/types"
)

const (
	issuer    = "hrintake"
	roleAdmin = "admin"
)

// Claims identify a dashboard session
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Gate checks admin credentials and issues dashboard tokens
type Gate struct {
	username     string
	password     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewGate builds a gate from the admin configuration. Without a JWT secret a
// random one is generated, so tokens only verify within this process.
func NewGate(cfg config.AdminConfig, logger *errors.Logger) (*Gate, error) {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, errors.NewInternalError(errors.ErrCodeInvalidConfig, "failed to generate JWT secret", err)
		}
		if logger != nil && cfg.Configured() {
			logger.Warn("admin.jwtSecret not set, issued tokens are valid for this process only")
		}
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &Gate{
		username:     cfg.Username,
		password:     cfg.Password,
		passwordHash: []byte(cfg.PasswordHash),
		secret:       secret,
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

// Configured reports whether any login can succeed
func (g *Gate) Configured() bool {
	return g.username != "" && (g.password != "" || len(g.passwordHash) > 0)
}

// Login checks the credentials and returns a signed token
func (g *Gate) Login(username, password string) (types.LoginResponse, error) {
	if !g.Configured() {
		return types.LoginResponse{}, errors.NewAuthError(errors.ErrCodeInvalidConfig, "admin login is not configured", nil)
	}
	if !g.checkCredentials(username, password) {
		return types.LoginResponse{}, errors.NewAuthError(errors.ErrCodeInvalidCredentials, "invalid username or password", nil)
	}
	return g.issue(username)
}

func (g *Gate) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1

	var passOK bool
	if len(g.passwordHash) > 0 {
		passOK = bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	}
	return userOK && passOK
}

func (g *Gate) issue(username string) (types.LoginResponse, error) {
	now := g.now()
	expires := now.Add(g.ttl)
	claims := Claims{
		Username: username,
		Role:     roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return types.LoginResponse{}, errors.NewInternalError(errors.ErrCodeInvalidToken, "failed to sign token", err)
	}
	return types.LoginResponse{Token: signed, ExpiresAt: expires.UTC().Truncate(time.Second)}, nil
}

// Verify parses and validates a token
func (g *Gate) Verify(tokenStr string) (*Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, errors.NewAuthError(errors.ErrCodeInvalidToken, "missing token", nil)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		msg := "invalid token"
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}
		return nil, errors.NewAuthError(errors.ErrCodeInvalidToken, msg, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != roleAdmin {
		return nil, errors.NewAuthError(errors.ErrCodeInvalidToken, "invalid token", jwt.ErrSignatureInvalid)
	}
	return claims, nil
}

type contextKey string

// ClaimsContextKey holds the verified claims of a request
const ClaimsContextKey contextKey = "claims"

// WithClaims attaches claims to ctx
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// ClaimsFrom returns the claims attached by Require, or nil
func ClaimsFrom(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}
