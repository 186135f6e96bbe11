package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/users-api/internal/apperror"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateRequest) (*Response, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Response, error)
	ReplaceUser(ctx context.Context, id uuid.UUID, req CreateRequest) (*Response, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	GetUsersByBirthDateRange(ctx context.Context, from, to time.Time) ([]Response, error)
}

type service struct {
	repo   Repository
	mapper *Mapper
}

func NewService(repo Repository, mapper *Mapper) Service {
	return &service{repo: repo, mapper: mapper}
}

func (s *service) CreateUser(ctx context.Context, req CreateRequest) (*Response, error) {
	entity, err := s.mapper.ToEntity(req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to map create request")
		return nil, fmt.Errorf("failed to map user: %w", err)
	}

	created, err := s.repo.Create(ctx, &entity)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			log.Warn().Stringer("user_id", entity.ID).Msg("User id collision on create")
			return nil, apperror.NewDuplicate(fmt.Sprintf("User already exists by id=%s", entity.ID)).WithCause(err)
		}
		log.Error().Err(err).Msg("Failed to create user in repository")
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	log.Info().Stringer("user_id", created.ID).Msg("User created successfully")

	resp := s.mapper.ToResponse(*created)
	return &resp, nil
}

func (s *service) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Response, error) {
	existing, err := s.findExisting(ctx, id, "update")
	if err != nil {
		return nil, err
	}

	merged := Merge(*existing, s.mapper.ToPatch(id, req))

	updated, err := s.repo.Update(ctx, id, &merged)
	if err != nil {
		return nil, s.writeError(err, id, "update")
	}

	log.Info().Stringer("user_id", id).Msg("User updated successfully")

	resp := s.mapper.ToResponse(*updated)
	return &resp, nil
}

func (s *service) ReplaceUser(ctx context.Context, id uuid.UUID, req CreateRequest) (*Response, error) {
	if _, err := s.findExisting(ctx, id, "replace"); err != nil {
		return nil, err
	}

	entity := s.mapper.ToEntityWithID(id, req)

	replaced, err := s.repo.Replace(ctx, id, &entity)
	if err != nil {
		return nil, s.writeError(err, id, "replace")
	}

	log.Info().Stringer("user_id", id).Msg("User replaced successfully")

	resp := s.mapper.ToResponse(*replaced)
	return &resp, nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findExisting(ctx, id, "delete"); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.writeError(err, id, "delete")
	}

	log.Info().Stringer("user_id", id).Msg("User deleted successfully")
	return nil
}

func (s *service) GetUsersByBirthDateRange(ctx context.Context, from, to time.Time) ([]Response, error) {
	users, err := s.repo.FindByBirthDateRange(ctx, from, to)
	if err != nil {
		log.Error().Err(err).Time("from", from).Time("to", to).Msg("Failed to find users by birth date range")
		return nil, fmt.Errorf("failed to find users by birth date range: %w", err)
	}

	if len(users) == 0 {
		msg := fmt.Sprintf("Users not found by DateRange=%s - %s", from.Format(DateLayout), to.Format(DateLayout))
		log.Warn().Msg(msg)
		return nil, apperror.NewNotFound(msg)
	}

	log.Info().Int("count", len(users)).Msg("Users found by birth date range")
	return s.mapper.ToResponses(users), nil
}

func (s *service) findExisting(ctx context.Context, id uuid.UUID, op string) (*User, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Stringer("user_id", id).Msgf("Could not %s not existing user", op)
			return nil, notFound(id, err)
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("Failed to get user by id in repository")
		return nil, fmt.Errorf("failed to get user by id '%s': %w", id, err)
	}
	return existing, nil
}

// writeError classifies a repository write failure. ErrNotFound here means the
// user was removed between the lookup and the write.
func (s *service) writeError(err error, id uuid.UUID, op string) error {
	if errors.Is(err, ErrNotFound) {
		log.Warn().Stringer("user_id", id).Msgf("User disappeared before %s", op)
		return notFound(id, err)
	}
	log.Error().Err(err).Stringer("user_id", id).Msgf("Failed to %s user", op)
	return fmt.Errorf("failed to %s user by id '%s': %w", op, id, err)
}

func notFound(id uuid.UUID, cause error) error {
	return apperror.NewNotFound(fmt.Sprintf("User not found by id=%s", id)).WithCause(cause)
}
