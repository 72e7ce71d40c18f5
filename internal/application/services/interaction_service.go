package services

import (
	"context"

	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/providers"
	"github.com/sitelore/backend/internal/domain/repositories"
	"github.com/sitelore/backend/internal/infrastructure/observability"
	"github.com/sitelore/backend/pkg/errors"
)

// InteractionService records users and their interaction events. Every
// stored event is announced on the bus so cached taste profiles can be
// invalidated; the announcement is best effort.
type InteractionService struct {
	eventRepo repositories.EventRepository
	userRepo  repositories.UserRepository
	bus       providers.EventBus
}

// NewInteractionService creates a new interaction service. bus may be nil.
func NewInteractionService(
	eventRepo repositories.EventRepository,
	userRepo repositories.UserRepository,
	bus providers.EventBus,
) *InteractionService {
	return &InteractionService{eventRepo: eventRepo, userRepo: userRepo, bus: bus}
}

// CreateUser stores a new user and returns its id.
func (s *InteractionService) CreateUser(ctx context.Context, user *entities.User) (int64, error) {
	if user.Name == "" {
		return 0, errors.NewValidationError("name must not be empty")
	}
	return s.userRepo.Create(ctx, user)
}

// GetUser returns the stored user.
func (s *InteractionService) GetUser(ctx context.Context, id int64) (*entities.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// RecordEvent validates and stores an interaction event, then publishes
// an invalidation notice. The user must exist.
func (s *InteractionService) RecordEvent(ctx context.Context, event *entities.InteractionEvent) error {
	ctx, span := observability.StartSpan(ctx, "interaction.record_event")
	defer span.End()

	if err := event.Validate(); err != nil {
		return errors.NewValidationError(err.Error())
	}
	if _, err := s.userRepo.GetByID(ctx, event.UserID); err != nil {
		return err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		observability.RecordError(span, err)
		return err
	}

	if s.bus != nil {
		notice := &entities.InteractionNotice{
			EventID:   event.ID,
			UserID:    event.UserID,
			SiteID:    event.SiteID,
			EventType: event.EventType,
			CreatedAt: event.CreatedAt,
		}
		if err := s.bus.Publish(ctx, providers.EventChannelInteractions, notice); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Int64("user_id", event.UserID).
				Msg("failed to publish interaction notice")
		}
	}

	return nil
}

// RecentEvents returns the user's latest events, newest first.
func (s *InteractionService) RecentEvents(ctx context.Context, userID int64, limit int) ([]*entities.InteractionEvent, error) {
	return s.eventRepo.ListByUser(ctx, userID, limit)
}
