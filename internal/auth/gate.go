package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/models"
)

// Principal is the caller every drive operation is scoped to.
type Principal struct {
	UserID   uuid.UUID
	Email    string
	IsActive bool
}

type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Gate turns a bearer token into a Principal.
type Gate struct {
	tokens *TokenIssuer
	users  UserFinder
}

func NewGate(tokens *TokenIssuer, users UserFinder) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Resolve fails with domain.ErrUnauthenticated for a missing, invalid or
// unknown token and with domain.ErrForbidden for an inactive user.
func (g *Gate) Resolve(ctx context.Context, token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", domain.ErrUnauthenticated)
	}

	userID, err := g.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthenticated)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is not active", domain.ErrForbidden)
	}

	return &Principal{UserID: user.ID, Email: user.Email, IsActive: user.IsActive}, nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
