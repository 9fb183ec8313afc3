// Package identity resolves the identity issued by the external auth
// provider to an internal user.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
)

// UserStore is the part of the storage the resolver depends on.
//
//go:generate mockgen -destination=mocks/mock_user_store.go -source=identity.go UserStore
type UserStore interface {
	FindUser(ctx context.Context, externalID string) (*models.User, error)
	EnsureUser(ctx context.Context, externalID string) (*models.User, error)
}

// Policy decides which create paths provision an unknown identity.
type Policy string

const (
	// ProvisionOnCreate provisions on every create, for every resource.
	ProvisionOnCreate Policy = "create"
	// ProvisionNever answers unknown identities with not found everywhere.
	ProvisionNever Policy = "never"
	// ProvisionTransactions provisions only when a transaction is created.
	ProvisionTransactions Policy = "transactions"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case ProvisionOnCreate, ProvisionNever, ProvisionTransactions:
		return p, nil
	case "":
		return ProvisionOnCreate, nil
	default:
		return "", fmt.Errorf("unknown provisioning policy %q", s)
	}
}

type Resolver struct {
	store  UserStore
	policy Policy
}

func NewResolver(store UserStore, policy Policy) *Resolver {
	return &Resolver{store: store, policy: policy}
}

// Resolve never creates a user; read, update and delete paths use it.
func (r *Resolver) Resolve(ctx context.Context, externalID string) (*models.User, error) {
	const op = "identity.Resolve"

	externalID, err := validate(externalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := r.store.FindUser(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *Resolver) ResolveOrCreate(ctx context.Context, externalID string) (*models.User, error) {
	const op = "identity.ResolveOrCreate"

	externalID, err := validate(externalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := r.store.EnsureUser(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// ResolveForCreate resolves the owner of a new record in collection,
// provisioning the user when the policy allows it.
func (r *Resolver) ResolveForCreate(ctx context.Context, collection, externalID string) (*models.User, error) {
	if r.provisions(collection) {
		return r.ResolveOrCreate(ctx, externalID)
	}
	return r.Resolve(ctx, externalID)
}

func (r *Resolver) provisions(collection string) bool {
	switch r.policy {
	case ProvisionNever:
		return false
	case ProvisionTransactions:
		return collection == "transactions"
	default:
		return true
	}
}

func validate(externalID string) (string, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return "", fmt.Errorf("%w: external id is required", domain.ErrInvalidRequest)
	}
	return externalID, nil
}
