package service

import (
	"context"
	"fmt"

	"medsched/infras/otel"
	"medsched/internal/domains/notification/model"
	"medsched/internal/domains/notification/model/dto"
	"medsched/internal/domains/notification/repository"
	"medsched/shared"
	"medsched/shared/constant"
	gDto "medsched/shared/dto"
	"medsched/shared/failure"
	"medsched/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Notification interface {
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetNotificationsResponse, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Archive(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo repository.Notification
	otel otel.Otel
}

func New(repo repository.Notification, otel otel.Otel) Notification {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetNotificationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count notifications")

		return res, fmt.Errorf("failed to count notifications: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get notifications")

		return res, fmt.Errorf("failed to get notifications: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) MarkRead(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkRead")
	defer scope.End()
	defer scope.TraceIfError(err)

	notification, err := s.getOwned(ctx, id)
	if err != nil {
		return err
	}

	if notification.Status != model.StatusUnread {
		return nil
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	err = s.repo.Update(ctx, map[string]any{
		model.FieldStatus:        model.StatusRead,
		model.FieldReadAt:        now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to mark notification as read")

		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	return nil
}

func (s *serviceImpl) MarkAllRead(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkAllRead")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Table:    model.TableName,
				Field:    model.FieldUserID,
				Value:    user,
				Operator: gDto.FilterOperatorEq,
			},
			gDto.Filter{
				Table:    model.TableName,
				Field:    model.FieldStatus,
				Value:    model.StatusUnread,
				Operator: gDto.FilterOperatorEq,
			},
		},
	}

	err = s.repo.Update(ctx, map[string]any{
		model.FieldStatus:        model.StatusRead,
		model.FieldReadAt:        now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to mark notifications as read")

		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}

	return nil
}

func (s *serviceImpl) Archive(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Archive")
	defer scope.End()
	defer scope.TraceIfError(err)

	notification, err := s.getOwned(ctx, id)
	if err != nil {
		return err
	}

	if notification.Status == model.StatusArchived {
		return nil
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	err = s.repo.Update(ctx, map[string]any{
		model.FieldStatus:        model.StatusArchived,
		model.FieldArchivedAt:    now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to archive notification")

		return fmt.Errorf("failed to archive notification: %w", err)
	}

	return nil
}

// getOwned loads a notification and checks that the caller is its recipient.
func (s *serviceImpl) getOwned(ctx context.Context, id string) (model.Notification, error) {
	notification, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get notification")

		return notification, fmt.Errorf("failed to get notification: %w", err)
	}

	if notification.ID == constant.Empty {
		return notification, failure.NotFound("notification not found") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if notification.UserID != user {
		return notification, failure.ResourceRestrictedError // nolint:wrapcheck
	}

	return notification, nil
}
