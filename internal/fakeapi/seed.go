package fakeapi

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/partygames/truthordare/internal/domain"
)

type SeedAction struct {
	Text string
	Type domain.ActionType
}

type SeedCollection struct {
	Name        string
	Description string
	PlayCount   int
	Actions     []SeedAction
}

// DemoCollections is loaded by the dev server so a fresh install has
// something to browse.
var DemoCollections = []SeedCollection{
	{
		Name:        "Warm up",
		Description: "Easy questions to break the ice",
		PlayCount:   42,
		Actions: []SeedAction{
			{Text: "What was your first job?", Type: domain.ActionTruth},
			{Text: "Do your best impression of someone here", Type: domain.ActionDare},
			{Text: "What is your most used emoji?", Type: domain.ActionTruth},
		},
	},
	{
		Name:        "Party",
		Description: "For when everyone knows each other",
		PlayCount:   17,
		Actions: []SeedAction{
			{Text: "Show the last photo on your phone", Type: domain.ActionDare},
			{Text: "Who here would you call at 3am?", Type: domain.ActionTruth},
		},
	},
}

// Seed creates the owner account and its collections. Running it again
// against the same database is a no-op.
func (s *Server) Seed(ctx context.Context, email, password string, collections []SeedCollection) error {
	email = normalizeEmail(email)
	if _, err := s.store.UserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return err
	}
	owner := &userRecord{Name: "Demo", Surname: "Host", Email: email, PasswordHash: string(hash)}
	if err := s.store.CreateUser(ctx, owner); err != nil {
		return err
	}
	for _, sc := range collections {
		c := &collectionRecord{Name: sc.Name, Description: sc.Description, UserID: owner.ID, PlayCount: sc.PlayCount}
		if err := s.store.CreateCollection(ctx, c); err != nil {
			return err
		}
		for i, sa := range sc.Actions {
			if err := s.store.AddAction(ctx, c.ID, owner.ID, &actionRecord{Text: sa.Text, Type: string(sa.Type), Position: i + 1}); err != nil {
				return err
			}
		}
	}
	s.logger.Info("fakeapi seeded", "owner", email, "collections", len(collections))
	return nil
}
