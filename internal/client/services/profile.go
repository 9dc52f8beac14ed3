package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
	"github.com/dverbitsky/chronokeeper/internal/client/repositories/chat"
	"github.com/dverbitsky/chronokeeper/internal/client/repositories/events"
	"github.com/dverbitsky/chronokeeper/internal/client/repositories/profile"
	"github.com/dverbitsky/chronokeeper/internal/common"
	"github.com/dverbitsky/chronokeeper/internal/cryptox"
)

// ProfileService manages the singleton profile and the local PIN gate.
// The PIN protects the local UI only; it plays no role in remote calls.
type ProfileService interface {
	// Setup creates the profile with a hashed PIN. The pin slice is wiped
	// before returning.
	Setup(ctx context.Context, name string, birthDate time.Time, pin []byte) (*models.Profile, error)

	// Get returns the profile, or common.ErrNoProfile before setup.
	Get(ctx context.Context) (*models.Profile, error)

	// Update merges a partial profile change. PIN changes go through ChangePIN.
	Update(ctx context.Context, patch *models.ProfilePatch) (*models.Profile, error)

	// VerifyPIN checks the candidate against the stored digest. Returns
	// common.ErrWrongPIN on mismatch. The candidate slice is wiped.
	VerifyPIN(ctx context.Context, pin []byte) error

	// ChangePIN verifies the current PIN and stores a digest of the new one
	// under a fresh salt. Both slices are wiped.
	ChangePIN(ctx context.Context, current, next []byte) error

	// Wipe deletes all local data: events, chat history and the profile.
	Wipe(ctx context.Context) error
}

type profileService struct {
	profileRepo profile.Repository
	eventRepo   events.Repository
	chatRepo    chat.Repository
}

func NewProfileService(profileRepo profile.Repository, eventRepo events.Repository, chatRepo chat.Repository) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		eventRepo:   eventRepo,
		chatRepo:    chatRepo,
	}
}

func (s *profileService) Setup(ctx context.Context, name string, birthDate time.Time, pin []byte) (*models.Profile, error) {
	defer cryptox.Wipe(pin)

	salt, err := cryptox.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("error generating salt: %w", err)
	}

	p := &models.Profile{
		Name:      name,
		BirthDate: birthDate,
		PINSalt:   salt,
		PINHash:   cryptox.HashPIN(pin, salt),
		Locale:    "en",
		Theme:     "light",
	}

	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("error saving profile: %w", err)
	}
	return p, nil
}

func (s *profileService) Get(ctx context.Context) (*models.Profile, error) {
	return s.profileRepo.Get(ctx)
}

func (s *profileService) Update(ctx context.Context, patch *models.ProfilePatch) (*models.Profile, error) {
	p, err := s.profileRepo.Update(ctx, patch)
	if err != nil {
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return p, nil
}

func (s *profileService) VerifyPIN(ctx context.Context, pin []byte) error {
	defer cryptox.Wipe(pin)

	p, err := s.profileRepo.Get(ctx)
	if err != nil {
		return err
	}

	if !cryptox.VerifyPIN(pin, p.PINSalt, p.PINHash) {
		return common.ErrWrongPIN
	}
	return nil
}

func (s *profileService) ChangePIN(ctx context.Context, current, next []byte) error {
	defer cryptox.Wipe(next)

	if err := s.VerifyPIN(ctx, current); err != nil {
		return err
	}

	p, err := s.profileRepo.Get(ctx)
	if err != nil {
		return err
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return fmt.Errorf("error generating salt: %w", err)
	}

	p.PINSalt = salt
	p.PINHash = cryptox.HashPIN(next, salt)

	if err := s.profileRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("error saving profile: %w", err)
	}
	return nil
}

func (s *profileService) Wipe(ctx context.Context) error {
	if err := s.eventRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("error wiping events: %w", err)
	}
	if err := s.chatRepo.Clear(ctx); err != nil {
		return fmt.Errorf("error wiping chat history: %w", err)
	}
	if err := s.profileRepo.Delete(ctx); err != nil {
		return fmt.Errorf("error wiping profile: %w", err)
	}
	return nil
}
