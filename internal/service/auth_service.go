package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/api/idtoken"
	"uleaf-admin/internal/config"
	"uleaf-admin/internal/domain"
	"uleaf-admin/internal/server/authctx"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNotStaff     = errors.New("account is not an admin or seller")
	ErrNoJWTSecret  = errors.New("token exchange is disabled: JWT_SECRET is not set")
)

// FirebaseVerifier is satisfied by *auth.Client.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type GoogleValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// AuthService resolves bearer tokens into users. It accepts gateway-issued
// HS256 tokens, Firebase ID tokens and Google ID tokens, in that order.
type AuthService struct {
	Config         config.Config
	Logger         *slog.Logger
	FirebaseAuth   FirebaseVerifier
	ValidateGoogle GoogleValidator
}

type AuthResult struct {
	AccessToken string              `json:"accessToken"`
	ExpiresAt   time.Time           `json:"expiresAt"`
	User        authctx.CurrentUser `json:"user"`
}

func (s AuthService) Authenticate(ctx context.Context, raw string) (*authctx.CurrentUser, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}
	if s.Config.JWTSecret != "" {
		if u, err := s.parseAccessToken(raw); err == nil {
			return u, nil
		}
	}
	return s.verifyIdentity(ctx, raw)
}

// Exchange verifies a Firebase or Google ID token and issues a gateway
// access token for admins and sellers.
func (s AuthService) Exchange(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.Config.JWTSecret == "" {
		return nil, ErrNoJWTSecret
	}
	u, err := s.verifyIdentity(ctx, strings.TrimSpace(idToken))
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleAdmin && u.Role != domain.RoleSeller {
		return nil, ErrNotStaff
	}
	return s.IssueAccessToken(*u)
}

func (s AuthService) IssueAccessToken(u authctx.CurrentUser) (*AuthResult, error) {
	ttl := s.Config.AccessTokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	exp := now.Add(ttl)
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        u.UID,
		"email":      u.Email,
		"role":       string(u.Role),
		"token_type": "access",
		"exp":        exp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}
	u.Token = access
	u.Forward = false
	return &AuthResult{AccessToken: access, ExpiresAt: exp, User: u}, nil
}

func (s AuthService) parseAccessToken(raw string) (*authctx.CurrentUser, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != "access" {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &authctx.CurrentUser{UID: sub, Email: email, Role: domain.UserRole(role), Token: raw}, nil
}

func (s AuthService) verifyIdentity(ctx context.Context, raw string) (*authctx.CurrentUser, error) {
	switch {
	case s.FirebaseAuth != nil:
		tok, err := s.FirebaseAuth.VerifyIDToken(ctx, raw)
		if err != nil {
			s.debug("firebase token rejected", err)
			return nil, ErrInvalidToken
		}
		email, _ := tok.Claims["email"].(string)
		return &authctx.CurrentUser{
			UID:     tok.UID,
			Email:   email,
			Role:    s.roleFor(email, tok.Claims),
			Token:   raw,
			Forward: true,
		}, nil
	case s.Config.GoogleClientID != "":
		validate := s.ValidateGoogle
		if validate == nil {
			validate = idtoken.Validate
		}
		payload, err := validate(ctx, raw, s.Config.GoogleClientID)
		if err != nil {
			s.debug("google token rejected", err)
			return nil, ErrInvalidToken
		}
		email, _ := payload.Claims["email"].(string)
		return &authctx.CurrentUser{
			UID:   payload.Subject,
			Email: email,
			Role:  s.roleFor(email, nil),
			Token: raw,
		}, nil
	}
	return nil, ErrInvalidToken
}

// roleFor reads the role custom claim, then the admin allowlist. Anyone
// else is treated as a buyer and rejected by the role middleware.
func (s AuthService) roleFor(email string, claims map[string]interface{}) domain.UserRole {
	if claims != nil {
		if admin, _ := claims["admin"].(bool); admin {
			return domain.RoleAdmin
		}
		for _, key := range []string{"role", "userType"} {
			if v, ok := claims[key].(string); ok && v != "" {
				return domain.UserRole(strings.ToLower(v))
			}
		}
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range s.Config.AdminEmails {
		if email != "" && email == allowed {
			return domain.RoleAdmin
		}
	}
	return domain.RoleBuyer
}

func (s AuthService) debug(msg string, err error) {
	if s.Logger != nil {
		s.Logger.Debug(msg, "err", err)
	}
}
