package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/model"
)

// EnsureProfile creates the user's profile row when it does not exist yet.
// Users already seen are answered from memory.
func (g *Gateway) EnsureProfile(ctx context.Context, user model.User) error {
	if user.ID == "" {
		return fmt.Errorf("%w: user id is required", model.ErrValidation)
	}
	if _, ok := g.profiles.Get(user.ID); ok {
		return nil
	}

	exists, err := g.profileExists(ctx, user.ID)
	if err != nil {
		return err
	}
	if !exists {
		_, err := g.store.Insert(ctx, "profiles", db.Row{
			"id":         user.ID,
			"email":      user.Email,
			"created_at": g.timestamp(),
		})
		if err != nil {
			// a concurrent request may have created it first
			if exists, checkErr := g.profileExists(ctx, user.ID); checkErr != nil || !exists {
				return fmt.Errorf("create profile: %w", err)
			}
		} else {
			g.log.WithField("user_id", user.ID).Info("profile created")
		}
	}

	g.profiles.Set(user.ID, struct{}{}, 1)
	return nil
}

func (g *Gateway) GetProfile(ctx context.Context, user model.User) (model.Profile, error) {
	row, err := g.store.From("profiles").Eq("id", user.ID).Single(ctx)
	if err != nil {
		return model.Profile{}, notFound(err)
	}
	createdAt, err := requiredTime(row, "created_at")
	if err != nil {
		return model.Profile{}, err
	}
	return model.Profile{ID: row.String("id"), Email: row.String("email"), CreatedAt: createdAt}, nil
}

func (g *Gateway) profileExists(ctx context.Context, id string) (bool, error) {
	_, err := g.store.From("profiles").Eq("id", id).Single(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrNotFound):
		return false, nil
	}
	return false, fmt.Errorf("look up profile: %w", err)
}
