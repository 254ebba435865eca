package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"medsched/config"
	"medsched/infras/kafka"
	"medsched/infras/otel"
	"medsched/infras/postgres"
	apptModel "medsched/internal/domains/appointment/model"
	apptRepo "medsched/internal/domains/appointment/repository"
	apptService "medsched/internal/domains/appointment/service"
	notifModel "medsched/internal/domains/notification/model"
	notifRepo "medsched/internal/domains/notification/repository"
	"medsched/internal/domains/request/model"
	"medsched/internal/domains/request/model/dto"
	"medsched/internal/domains/request/repository"
	"medsched/shared"
	"medsched/shared/cache"
	"medsched/shared/constant"
	gDto "medsched/shared/dto"
	"medsched/shared/failure"
	gModel "medsched/shared/model"
	"medsched/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRequest    = "request:get"
	cacheGetAllRequest = "request:gets"
	cacheCountRequest  = "request:count"
)

type Request interface {
	Submit(ctx context.Context, req dto.SubmitRequest) (dto.RequestResponse, error)
	Transition(ctx context.Context, id string, req dto.TransitionRequest) (dto.RequestResponse, error)
	Get(ctx context.Context, id string) (dto.RequestResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRequestsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
}

type serviceImpl struct {
	repo      repository.Request
	apptRepo  apptRepo.Appointment
	notifRepo notifRepo.Notification
	txRunner  postgres.TxRunner
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	kafka     kafka.Client
}

func New(
	repo repository.Request,
	apptRepo apptRepo.Appointment,
	notifRepo notifRepo.Notification,
	txRunner postgres.TxRunner,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	kafka kafka.Client,
) Request {
	return &serviceImpl{
		repo:      repo,
		apptRepo:  apptRepo,
		notifRepo: notifRepo,
		txRunner:  txRunner,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		kafka:     kafka,
	}
}

func (s *serviceImpl) Submit(ctx context.Context, req dto.SubmitRequest) (res dto.RequestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Submit")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	if role != constant.RolePatient {
		return res, failure.Forbidden("only patients can submit appointment requests") // nolint:wrapcheck
	}

	request, err := req.ToModel(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse appointment request")

		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date/time format: %v", err)) // nolint:wrapcheck
	}

	notification := buildNotification(request.DoctorID, notifModel.TypeAppointmentRequest,
		"New appointment request", "A patient has requested an appointment with you.", request, user)

	err = s.txRunner.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		if txErr := s.repo.InsertTx(ctx, sqltx, request); txErr != nil {
			log.Error().Err(txErr).Msg("failed to create appointment request")

			return fmt.Errorf("failed to create appointment request: %w", txErr)
		}

		if txErr := s.notifRepo.InsertTx(ctx, sqltx, notification); txErr != nil {
			log.Error().Err(txErr).Msg("failed to create notification")

			return fmt.Errorf("failed to create notification: %w", txErr)
		}

		return nil
	})
	if err != nil {
		return res, err
	}

	res.FromModel(request)

	s.afterMutation(ctx, request.ID, notification)

	return res, nil
}

func (s *serviceImpl) Transition(ctx context.Context, id string, req dto.TransitionRequest) (res dto.RequestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Transition")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	cmd := req.Command()

	var (
		request      model.AppointmentRequest
		notification notifModel.Notification
	)

	err = s.txRunner.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		var txErr error

		request, txErr = s.repo.GetTx(ctx, sqltx, shared.FilterByID(id, model.FieldID, model.TableName))
		if txErr != nil {
			log.Error().Err(txErr).Str("request", id).Msg("failed to get appointment request")

			return fmt.Errorf("failed to get appointment request: %w", txErr)
		}

		if request.ID == constant.Empty {
			return failure.NotFound("appointment request not found") // nolint:wrapcheck
		}

		if txErr = authorizeCommand(cmd, role, user, request); txErr != nil {
			return txErr
		}

		switch cmd {
		case model.CommandAccepted:
			notification, txErr = s.applyAccept(ctx, sqltx, &request, user)
		case model.CommandRejected:
			notification, txErr = s.applyReject(ctx, sqltx, &request, user)
		case model.CommandDoctorSuggestedAlternative:
			notification, txErr = s.applySuggestAlternative(ctx, sqltx, &request, req, user)
		case model.CommandPatientAcceptedAlternative:
			notification, txErr = s.applyAcceptAlternative(ctx, sqltx, &request, user)
		case model.CommandPatientRejectedAlternative:
			notification, txErr = s.applyRejectAlternative(ctx, sqltx, &request, user)
		case model.CommandPending:
			notification, txErr = s.applyReschedule(ctx, sqltx, &request, req, user)
		case model.CommandCancelled:
			notification, txErr = s.applyCancel(ctx, sqltx, &request, user)
		default:
			txErr = failure.BadRequestFromString(fmt.Sprintf("unknown command: %s", cmd)) // nolint:wrapcheck
		}

		if txErr != nil {
			return txErr
		}

		if txErr = s.notifRepo.InsertTx(ctx, sqltx, notification); txErr != nil {
			log.Error().Err(txErr).Msg("failed to create notification")

			return fmt.Errorf("failed to create notification: %w", txErr)
		}

		return nil
	})
	if err != nil {
		if failure.GetKind(err) == failure.KindInternal {
			log.Error().Err(err).
				Str("request", id).
				Str("command", string(cmd)).
				Str("actor", user).
				Msg("transition failed")
		}

		return res, err
	}

	res.FromModel(request)

	s.afterMutation(ctx, request.ID, notification)

	return res, nil
}

// authorizeCommand matches the acting user against the side of the negotiation
// the command belongs to.
func authorizeCommand(cmd model.Command, role, user string, request model.AppointmentRequest) error {
	if cmd.DoctorIssued() {
		if role != constant.RoleDoctor || user != request.DoctorID {
			return failure.ResourceRestrictedError // nolint:wrapcheck
		}

		return nil
	}

	if role != constant.RolePatient || user != request.PatientID {
		return failure.ResourceRestrictedError // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) applyAccept(ctx context.Context, sqltx *sqlx.Tx, request *model.AppointmentRequest, user string) (notifModel.Notification, error) {
	if request.Phase() != model.PhaseAwaitingResponse {
		return notifModel.Notification{}, failure.InvalidState(fmt.Sprintf("cannot accept a request in status %s", request.Status)) // nolint:wrapcheck
	}

	if !request.HasPreferredSlot() {
		return notifModel.Notification{}, failure.BadRequestFromString("preferred date/time required") // nolint:wrapcheck
	}

	slot := model.CombineSlot(request.PreferredDate.Time, request.PreferredTimeStart.Time, timezone.GetLocation())
	isReschedule := request.IsReschedule()

	if isReschedule {
		if err := s.moveAppointment(ctx, sqltx, request.AppointmentID.String, slot, user); err != nil {
			return notifModel.Notification{}, err
		}
	} else {
		appointmentID, err := s.createAppointment(ctx, sqltx, request, slot, user)
		if err != nil {
			return notifModel.Notification{}, err
		}

		request.AppointmentID = sql.NullString{String: appointmentID, Valid: true}
	}

	request.Status = model.StatusConfirmed

	err := s.persistTransition(ctx, sqltx, request, user, map[string]any{
		model.FieldStatus:        request.Status,
		model.FieldAppointmentID: request.AppointmentID,
	})
	if err != nil {
		return notifModel.Notification{}, err
	}

	if isReschedule {
		return buildNotification(request.PatientID, notifModel.TypeAppointmentConfirmed,
			"Appointment rescheduled", "Your doctor accepted the new time for your appointment.", *request, user), nil
	}

	return buildNotification(request.PatientID, notifModel.TypeAppointmentAccepted,
		"Appointment request accepted", "Your doctor accepted your requested time.", *request, user), nil
}

func (s *serviceImpl) applyReject(ctx context.Context, sqltx *sqlx.Tx, request *model.AppointmentRequest, user string) (notifModel.Notification, error) {
	if request.Phase() != model.PhaseAwaitingResponse {
		return notifModel.Notification{}, failure.InvalidState(fmt.Sprintf("cannot reject a request in status %s", request.Status)) // nolint:wrapcheck
	}

	// Rejecting a reschedule attempt leaves the original booking standing.
	if request.IsReschedule() {
		request.Status = model.StatusConfirmed

		err := s.persistTransition(ctx, sqltx, request, user, map[string]any{
			model.FieldStatus: request.Status,
		})
		if err != nil {
			return notifModel.Notification{}, err
		}

		return buildNotification(request.PatientID, notifModel.TypeAppointmentConfirmed,
			"Reschedule declined", "Your doctor declined the new time; your appointment keeps its original time.", *request, user), nil
	}

	request.Status = model.StatusRejected

	err := s.persistTransition(ctx, sqltx, request, user, map[string]any{
		model.FieldStatus: request.Status,
	})
	if err != nil {
		return notifModel.Notification{}, err
	}

	return buildNotification(request.PatientID, notifModel.TypeAppointmentRejected,
		"Appointment request declined", "Your doctor declined your appointment request.", *request, user), nil
}

func (s *serviceImpl) applySuggestAlternative(ctx context.Context, sqltx *sqlx.Tx, request *model.AppointmentRequest, req dto.TransitionRequest, user string) (notifModel.Notification, error) {
	if request.Phase() != model.PhaseAwaitingResponse {
		return notifModel.Notification{}, failure.InvalidState(fmt.Sprintf("cannot suggest an alternative for a request in status %s", request.Status)) // nolint:wrapcheck
	}

	// Reschedule negotiations allow counter-proposals unconditionally.
	if !request.IsReschedule() && !request.IsFlexible {
		return notifModel.Notification{}, failure.BadRequestFromString("patient did not allow alternatives") // nolint:wrapcheck
	}

	date, clock, ok, err := req.SuggestedSlot()
	if err != nil {
		return notifModel.Notification{}, failure.BadRequestFromString(fmt.Sprintf("invalid date/time format: %v", err)) // nolint:wrapcheck
	}

	if !ok {
		return notifModel.Notification{}, failure.BadRequestFromString("suggested date/time required") // nolint:wrapcheck
	}

	request.SuggestedDate = sql.NullTime{Time: date, Valid: true}
	request.SuggestedTimeStart = sql.NullTime{Time: clock, Valid: true}
	request.Status = model.StatusDoctorSuggestedAlternative

	err = s.persistTransition(ctx, sqltx, request, user, map[string]any{
		model.FieldStatus:             request.Status,
		model.FieldSuggestedDate:      request.SuggestedDate,
		model.FieldSuggestedTimeStart: request.SuggestedTimeStart,
	})
	if err != nil {
		return notifModel.Notification{}, err
	}

	return buildNotification(request.PatientID, notifModel.TypeAppointmentSuggested,
		"Alternative time suggested", "Your doctor suggested a different time for your appointment.", *request, user), nil
}

func (s *serviceImpl) applyAcceptAlternative(ctx context.Context, sqltx *sqlx.Tx, request *model.AppointmentRequest, user string) (notifModel.Notification, error) {
	if request.Phase() != model.PhaseSuggested {
		return notifModel.Notification{}, failure.InvalidState(fmt.Sprintf("no pending suggestion on a request in status %s", request.Status)) // nolint:wrapcheck
	}

	if !request.HasSuggestedSlot() {
		return notifModel.Notification{}, failure.InvalidState("request has no suggested slot") // nolint:wrapcheck
	}

	slot := model.CombineSlot(request.SuggestedDate.Time, request.SuggestedTimeStart.Time, timezone.GetLocation())

	if request.IsReschedule() {
		if err := s.moveAppointment(ctx, sqltx, request.AppointmentID.String, slot, user); err != nil {
			return notifModel.Notification{}, err
		}
	} else {
		appointmentID, err := s.createAppointment(ctx, sqltx, request, slot, user)
		if err != nil {
			return notifModel.Notification{}, err
		}

		request.AppointmentID = sql.NullString{String: appointmentID, Valid: true}
	}

	request.Status = model.StatusConfirmed
	request.SuggestedDate = sql.NullTime{}
	request.SuggestedTimeStart = sql.NullTime{}

	err := s.persistTransition(ctx, sqltx, request, user, map[string]any{
		model.FieldStatus:             request.Status,
		model.FieldSuggestedDate:      request.SuggestedDate,
		model.FieldSuggestedTimeStart: request.SuggestedTimeStart,
		model.FieldAppointmentID:      request.AppointmentID,
	})
	if err != nil {
		return notifModel.Notification{}, err
	}

	return buildNotification(request.DoctorID, notifModel.TypeAppointmentConfirmed,
		"Alternative time accepted", "The patient accepted your suggested time.", *request, user), nil
}

func (s *serviceImpl) applyRejectAlternative(ctx context.Context, sqltx *sqlx.Tx, request *model.AppointmentRequest, user string) (notifModel.Notification, error) {
	if request.Phase() != model.PhaseSuggested {
		return notifModel.Notification{}, failure.InvalidState(fmt.Sprintf("no pending suggestion on a request in status %s", request.Status)) // nolint:wrapcheck
	}

	request.SuggestedDate = sql.NullTime{}
	request.SuggestedTimeStart = sql.NullTime{}

	// Rejecting a counter-proposal closes a first booking but merely ends the
	// reschedule attempt for an existing one.
	if request.IsReschedule() {
		request.Status = model.StatusConfirmed

		err := s.persistTransition(ctx, sqltx, request, user, map[string]any{
			model.FieldStatus:             request.Status,
			model.FieldSuggestedDate:      request.SuggestedDate,
			model.FieldSuggestedTimeStart: request.SuggestedTimeStart,
		})
		if err != nil {
			return notifModel.Notification{}, err
		}

		return buildNotification(request.DoctorID, notifModel.TypeAppointmentConfirmed,
			"Suggestion declined", "The patient declined your suggested time; the appointment keeps its original time.", *request, user), nil
	}

	request.Status = model.StatusCancelled

	err := s.persistTransition(ctx, sqltx, request, user, map[string]any{
		model.FieldStatus:             request.Status,
		model.FieldSuggestedDate:      request.SuggestedDate,
		model.FieldSuggestedTimeStart: request.SuggestedTimeStart,
	})
	if err != nil {
		return notifModel.Notification{}, err
	}

	return buildNotification(request.DoctorID, notifModel.TypeAppointmentCancelled,
		"Suggestion declined", "The patient declined your suggested time; the request is cancelled.", *request, user), nil
}

func (s *serviceImpl) applyReschedule(ctx context.Context, sqltx *sqlx.Tx, request *model.AppointmentRequest, req dto.TransitionRequest, user string) (notifModel.Notification, error) {
	if request.Phase() != model.PhaseSettled {
		return notifModel.Notification{}, failure.InvalidState(fmt.Sprintf("cannot reschedule a request in status %s", request.Status)) // nolint:wrapcheck
	}

	if !request.IsReschedule() {
		return notifModel.Notification{}, failure.InvalidState("request has no linked appointment") // nolint:wrapcheck
	}

	appointment, err := s.apptRepo.GetTx(ctx, sqltx, shared.FilterByID(request.AppointmentID.String, apptModel.FieldID, apptModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointment")

		return notifModel.Notification{}, fmt.Errorf("failed to get appointment: %w", err)
	}

	if appointment.ID == constant.Empty {
		return notifModel.Notification{}, failure.NotFound("appointment not found") // nolint:wrapcheck
	}

	if !appointment.CanReschedule() {
		return notifModel.Notification{}, failure.LimitExceeded("max reschedule limit reached") // nolint:wrapcheck
	}

	date, clock, ok, parseErr := req.PreferredSlot()
	if parseErr != nil {
		return notifModel.Notification{}, failure.BadRequestFromString(fmt.Sprintf("invalid date/time format: %v", parseErr)) // nolint:wrapcheck
	}

	if !ok {
		return notifModel.Notification{}, failure.BadRequestFromString("preferred date/time required") // nolint:wrapcheck
	}

	request.PreferredDate = sql.NullTime{Time: date, Valid: true}
	request.PreferredTimeStart = sql.NullTime{Time: clock, Valid: true}
	request.SuggestedDate = sql.NullTime{}
	request.SuggestedTimeStart = sql.NullTime{}
	request.Status = model.StatusPending

	// The appointment itself is untouched until the doctor responds.
	err = s.persistTransition(ctx, sqltx, request, user, map[string]any{
		model.FieldStatus:             request.Status,
		model.FieldPreferredDate:      request.PreferredDate,
		model.FieldPreferredTimeStart: request.PreferredTimeStart,
		model.FieldSuggestedDate:      request.SuggestedDate,
		model.FieldSuggestedTimeStart: request.SuggestedTimeStart,
	})
	if err != nil {
		return notifModel.Notification{}, err
	}

	return buildNotification(request.DoctorID, notifModel.TypeAppointmentRequest,
		"Reschedule requested", "The patient asked to move an existing appointment to a new time.", *request, user), nil
}

func (s *serviceImpl) applyCancel(ctx context.Context, sqltx *sqlx.Tx, request *model.AppointmentRequest, user string) (notifModel.Notification, error) {
	if request.Phase() == model.PhaseClosed {
		return notifModel.Notification{}, failure.InvalidState(fmt.Sprintf("cannot cancel a request in status %s", request.Status)) // nolint:wrapcheck
	}

	if request.IsReschedule() {
		err := s.apptRepo.UpdateTx(ctx, sqltx, map[string]any{
			apptModel.FieldStatus:    apptModel.StatusCancelled,
			constant.FieldModifiedAt: timezone.Now(),
			constant.FieldModifiedBy: user,
		}, shared.FilterByID(request.AppointmentID.String, apptModel.FieldID, apptModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to cancel appointment")

			return notifModel.Notification{}, fmt.Errorf("failed to cancel appointment: %w", err)
		}
	}

	request.Status = model.StatusCancelled
	request.SuggestedDate = sql.NullTime{}
	request.SuggestedTimeStart = sql.NullTime{}

	err := s.persistTransition(ctx, sqltx, request, user, map[string]any{
		model.FieldStatus:             request.Status,
		model.FieldSuggestedDate:      request.SuggestedDate,
		model.FieldSuggestedTimeStart: request.SuggestedTimeStart,
	})
	if err != nil {
		return notifModel.Notification{}, err
	}

	return buildNotification(request.DoctorID, notifModel.TypeAppointmentCancelled,
		"Appointment cancelled", "The patient cancelled the appointment request.", *request, user), nil
}

func (s *serviceImpl) createAppointment(ctx context.Context, sqltx *sqlx.Tx, request *model.AppointmentRequest, date time.Time, user string) (string, error) {
	appointment := apptModel.Appointment{
		ID:              uuid.NewString(),
		PatientID:       request.PatientID,
		DoctorID:        request.DoctorID,
		ClinicID:        request.ClinicID,
		AppointmentDate: date,
		DurationMinutes: apptModel.DefaultDurationMinutes,
		Status:          apptModel.StatusScheduled,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}

	if err := s.apptRepo.InsertTx(ctx, sqltx, appointment); err != nil {
		log.Error().Err(err).Msg("failed to create appointment")

		return constant.Empty, fmt.Errorf("failed to create appointment: %w", err)
	}

	return appointment.ID, nil
}

func (s *serviceImpl) moveAppointment(ctx context.Context, sqltx *sqlx.Tx, appointmentID string, date time.Time, user string) error {
	appointment, err := s.apptRepo.GetTx(ctx, sqltx, shared.FilterByID(appointmentID, apptModel.FieldID, apptModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointment")

		return fmt.Errorf("failed to get appointment: %w", err)
	}

	if appointment.ID == constant.Empty {
		return failure.NotFound("appointment not found") // nolint:wrapcheck
	}

	err = s.apptRepo.UpdateTx(ctx, sqltx, map[string]any{
		apptModel.FieldAppointmentDate: date,
		apptModel.FieldRescheduleCount: appointment.RescheduleCount + 1,
		constant.FieldModifiedAt:       timezone.Now(),
		constant.FieldModifiedBy:       user,
	}, shared.FilterByID(appointmentID, apptModel.FieldID, apptModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to move appointment")

		return fmt.Errorf("failed to move appointment: %w", err)
	}

	return nil
}

func (s *serviceImpl) persistTransition(ctx context.Context, sqltx *sqlx.Tx, request *model.AppointmentRequest, user string, fields map[string]any) error {
	request.ModifiedAt = timezone.Now()
	request.ModifiedBy = user

	fields[constant.FieldModifiedAt] = request.ModifiedAt
	fields[constant.FieldModifiedBy] = request.ModifiedBy

	err := s.repo.UpdateTx(ctx, sqltx, fields, shared.FilterByID(request.ID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to update appointment request")

		return fmt.Errorf("failed to update appointment request: %w", err)
	}

	return nil
}

func buildNotification(recipient, notifType, title, message string, request model.AppointmentRequest, actor string) notifModel.Notification {
	return notifModel.Notification{
		ID:                   uuid.NewString(),
		UserID:               recipient,
		Type:                 notifType,
		Title:                title,
		Message:              message,
		AppointmentRequestID: sql.NullString{String: request.ID, Valid: true},
		AppointmentID:        request.AppointmentID,
		Status:               notifModel.StatusUnread,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  actor,
			ModifiedBy: actor,
		},
	}
}

// afterMutation publishes the notification event and drops stale cache
// entries. The notification row is already committed; the event stream is
// best effort on top of it.
func (s *serviceImpl) afterMutation(ctx context.Context, id string, notifications ...notifModel.Notification) {
	go func() {
		c := context.WithoutCancel(ctx)

		for _, notification := range notifications {
			err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.Notifications, kafka.Message{
				Key:   notification.ID,
				Value: notification,
			})
			if err != nil {
				log.Error().Err(err).Str("notification", notification.ID).Msg("failed to publish notification event")
			}
		}

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRequest, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete appointment request from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRequest)
		shared.InvalidateCaches(c, s.cache, cacheCountRequest)
		shared.InvalidateCaches(c, s.cache, apptService.CacheGetAppointment)
		shared.InvalidateCaches(c, s.cache, apptService.CacheGetAllAppointment)
		shared.InvalidateCaches(c, s.cache, apptService.CacheCountAppointment)
	}()
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RequestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetRequest, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for appointment request")

		return res, authorizeRead(ctx, res)
	}

	request, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointment request")

		return res, fmt.Errorf("failed to get appointment request: %w", err)
	}

	if request.ID == constant.Empty {
		return res, failure.NotFound("appointment request not found") // nolint:wrapcheck
	}

	res.FromModel(request)

	if err = authorizeRead(ctx, res); err != nil {
		return dto.RequestResponse{}, err
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save appointment request to cache")
		}
	}()

	return res, nil
}

func authorizeRead(ctx context.Context, res dto.RequestResponse) error {
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	switch role {
	case constant.RoleAdmin:
		return nil
	case constant.RoleDoctor:
		if res.DoctorID == user {
			return nil
		}
	case constant.RolePatient:
		if res.PatientID == user {
			return nil
		}
	}

	return failure.ResourceRestrictedError // nolint:wrapcheck
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRequestsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRequest, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for appointment requests")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count appointment requests")

		return res, fmt.Errorf("failed to count appointment requests: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointment requests")

		return res, fmt.Errorf("failed to get appointment requests: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save appointment requests to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRequest, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for appointment request count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count appointment requests")

		return res, fmt.Errorf("failed to count appointment requests: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save appointment request count to cache")
		}
	}()

	return res, nil
}
