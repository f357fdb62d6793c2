package identity

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/auth"

	"github.com/kicklink/social-backend/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

// Resolver turns a user id into the public snapshot embedded in
// conversation and comment payloads. Profiles live in Firebase, not in
// the relational store, so the resolver is the only identity lookup.
type Resolver interface {
	Resolve(ctx context.Context, userID string) (*model.UserSnapshot, error)
}

type firebaseResolver struct {
	client *auth.Client
}

func NewFirebaseResolver(client *auth.Client) Resolver {
	return &firebaseResolver{client: client}
}

func (r *firebaseResolver) Resolve(ctx context.Context, userID string) (*model.UserSnapshot, error) {
	if r.client == nil {
		return nil, ErrUserNotFound
	}
	u, err := r.client.GetUser(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	snap := &model.UserSnapshot{
		ID:       u.UID,
		Username: u.DisplayName,
	}
	if u.PhotoURL != "" {
		url := u.PhotoURL
		snap.AvatarURL = &url
	}
	if u.CustomClaims != nil {
		if v, ok := u.CustomClaims["verified"].(bool); ok {
			snap.IsVerified = v
		}
	}
	return snap, nil
}

// StaticResolver serves fixed snapshots. Used in tests and local runs
// without Firebase credentials.
type StaticResolver map[string]model.UserSnapshot

func (r StaticResolver) Resolve(_ context.Context, userID string) (*model.UserSnapshot, error) {
	snap, ok := r[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &snap, nil
}
