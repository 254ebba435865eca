package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"medsched/config"
	kafkaMocks "medsched/infras/kafka/mocks"
	otelMocks "medsched/infras/otel/mocks"
	pgMocks "medsched/infras/postgres/mocks"
	apptModel "medsched/internal/domains/appointment/model"
	apptMocks "medsched/internal/domains/appointment/mocks"
	notifModel "medsched/internal/domains/notification/model"
	notifMocks "medsched/internal/domains/notification/mocks"
	requestMocks "medsched/internal/domains/request/mocks"
	"medsched/internal/domains/request/model"
	"medsched/internal/domains/request/model/dto"
	"medsched/internal/domains/request/service"
	"medsched/shared"
	cacheMocks "medsched/shared/cache/mocks"
	"medsched/shared/constant"
	gDto "medsched/shared/dto"
	"medsched/shared/failure"
	gModel "medsched/shared/model"
	"medsched/shared/timezone"
)

const (
	patientID = "11111111-1111-1111-1111-111111111111"
	doctorID  = "22222222-2222-2222-2222-222222222222"
	requestID = "33333333-3333-3333-3333-333333333333"
	apptID    = "44444444-4444-4444-4444-444444444444"
)

type engineMocks struct {
	repo      *requestMocks.MockRequest
	apptRepo  *apptMocks.MockAppointment
	notifRepo *notifMocks.MockNotification
	cache     *cacheMocks.MockRedisCache
	kafka     *kafkaMocks.MockClient
}

func newEngine(ctrl *gomock.Controller) (service.Request, *engineMocks) {
	m := &engineMocks{
		repo:      requestMocks.NewMockRequest(ctrl),
		apptRepo:  apptMocks.NewMockAppointment(ctrl),
		notifRepo: notifMocks.NewMockNotification(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		kafka:     kafkaMocks.NewMockClient(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(m.repo, m.apptRepo, m.notifRepo, pgMocks.NewTxRunner(), cfg, m.cache, otelMocks.NewOtel(), m.kafka)

	return svc, m
}

// allowAsync covers the post-commit goroutine: event publishing and cache
// invalidation are both best effort and may or may not run before the test
// finishes.
func (m *engineMocks) allowAsync() {
	m.kafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func actorContext(userID, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func slot(value string) sql.NullTime {
	parsed, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}

	return sql.NullTime{Time: parsed, Valid: true}
}

func pendingRequest() model.AppointmentRequest {
	return model.AppointmentRequest{
		ID:                 requestID,
		PatientID:          patientID,
		DoctorID:           doctorID,
		PreferredDate:      slot("2025-03-01 00:00"),
		PreferredTimeStart: slot("2025-03-01 09:00"),
		IsFlexible:         false,
		Status:             model.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  patientID,
			ModifiedBy: patientID,
		},
	}
}

func confirmedRequest() model.AppointmentRequest {
	req := pendingRequest()
	req.Status = model.StatusConfirmed
	req.AppointmentID = sql.NullString{String: apptID, Valid: true}

	return req
}

func suggestedRequest() model.AppointmentRequest {
	req := pendingRequest()
	req.Status = model.StatusDoctorSuggestedAlternative
	req.SuggestedDate = slot("2025-03-02 00:00")
	req.SuggestedTimeStart = slot("2025-03-02 10:00")

	return req
}

func scheduledAppointment(rescheduleCount int) apptModel.Appointment {
	return apptModel.Appointment{
		ID:              apptID,
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: slot("2025-03-01 09:00").Time,
		DurationMinutes: apptModel.DefaultDurationMinutes,
		Status:          apptModel.StatusScheduled,
		RescheduleCount: rescheduleCount,
	}
}

func TestRequestService_Submit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.SubmitRequest
		setupMock func(m *engineMocks)
		wantErr   bool
		wantKind  failure.Kind
	}{
		{
			name: "patient submits a valid request",
			ctx:  actorContext(patientID, constant.RolePatient),
			req: dto.SubmitRequest{
				DoctorID:           doctorID,
				PreferredDate:      "2025-03-01",
				PreferredTimeStart: "09:00",
				IsFlexible:         true,
			},
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, req model.AppointmentRequest) error {
						assert.Equal(t, model.StatusPending, req.Status)
						assert.Equal(t, patientID, req.PatientID)
						assert.False(t, req.AppointmentID.Valid)

						return nil
					})

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, notification notifModel.Notification) error {
						assert.Equal(t, doctorID, notification.UserID)
						assert.Equal(t, notifModel.TypeAppointmentRequest, notification.Type)
						assert.Equal(t, notifModel.StatusUnread, notification.Status)

						return nil
					})

				m.allowAsync()
			},
		},
		{
			name: "doctor cannot submit",
			ctx:  actorContext(doctorID, constant.RoleDoctor),
			req: dto.SubmitRequest{
				DoctorID:           doctorID,
				PreferredDate:      "2025-03-01",
				PreferredTimeStart: "09:00",
			},
			setupMock: func(m *engineMocks) {},
			wantErr:   true,
			wantKind:  failure.KindForbidden,
		},
		{
			name: "invalid date format",
			ctx:  actorContext(patientID, constant.RolePatient),
			req: dto.SubmitRequest{
				DoctorID:           doctorID,
				PreferredDate:      "not-a-date",
				PreferredTimeStart: "09:00",
			},
			setupMock: func(m *engineMocks) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name: "insert failure rolls back",
			ctx:  actorContext(patientID, constant.RolePatient),
			req: dto.SubmitRequest{
				DoctorID:           doctorID,
				PreferredDate:      "2025-03-01",
				PreferredTimeStart: "09:00",
			},
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("insert error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newEngine(ctrl)
			tt.setupMock(m)

			res, err := svc.Submit(tt.ctx, tt.req)

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantKind != "" {
					assert.Equal(t, tt.wantKind, failure.GetKind(err))
				}

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, model.StatusPending, res.Status)
			assert.Equal(t, patientID, res.PatientID)
		})
	}
}

func TestRequestService_Transition_Accept(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		ctx        context.Context
		setupMock  func(m *engineMocks)
		wantErr    bool
		wantKind   failure.Kind
		wantStatus string
	}{
		{
			name: "first booking accept creates the appointment",
			ctx:  actorContext(doctorID, constant.RoleDoctor),
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(pendingRequest(), nil)

				m.apptRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, appointment apptModel.Appointment) error {
						assert.Equal(t, apptModel.StatusScheduled, appointment.Status)
						assert.Equal(t, 0, appointment.RescheduleCount)
						assert.Equal(t, apptModel.DefaultDurationMinutes, appointment.DurationMinutes)
						assert.Equal(t, 2025, appointment.AppointmentDate.Year())
						assert.Equal(t, 9, appointment.AppointmentDate.Hour())

						return nil
					})

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, notification notifModel.Notification) error {
						assert.Equal(t, patientID, notification.UserID)
						assert.Equal(t, notifModel.TypeAppointmentAccepted, notification.Type)

						return nil
					})

				m.allowAsync()
			},
			wantStatus: model.StatusConfirmed,
		},
		{
			name: "reschedule accept moves the appointment",
			ctx:  actorContext(doctorID, constant.RoleDoctor),
			setupMock: func(m *engineMocks) {
				req := pendingRequest()
				req.AppointmentID = sql.NullString{String: apptID, Valid: true}
				req.PreferredDate = slot("2025-03-10 00:00")
				req.PreferredTimeStart = slot("2025-03-10 14:00")

				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(req, nil)

				m.apptRepo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(scheduledAppointment(0), nil)

				m.apptRepo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, fields map[string]any, _ any) error {
						assert.Equal(t, 1, fields[apptModel.FieldRescheduleCount])

						date, ok := fields[apptModel.FieldAppointmentDate].(time.Time)
						assert.True(t, ok)
						assert.Equal(t, 14, date.Hour())

						return nil
					})

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, notification notifModel.Notification) error {
						assert.Equal(t, notifModel.TypeAppointmentConfirmed, notification.Type)

						return nil
					})

				m.allowAsync()
			},
			wantStatus: model.StatusConfirmed,
		},
		{
			name: "accept from confirmed is invalid",
			ctx:  actorContext(doctorID, constant.RoleDoctor),
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(confirmedRequest(), nil)
			},
			wantErr:  true,
			wantKind: failure.KindInvalidState,
		},
		{
			name: "accept without a preferred slot",
			ctx:  actorContext(doctorID, constant.RoleDoctor),
			setupMock: func(m *engineMocks) {
				req := pendingRequest()
				req.PreferredDate = sql.NullTime{}
				req.PreferredTimeStart = sql.NullTime{}

				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(req, nil)
			},
			wantErr:  true,
			wantKind: failure.KindValidation,
		},
		{
			name: "patient cannot accept",
			ctx:  actorContext(patientID, constant.RolePatient),
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(pendingRequest(), nil)
			},
			wantErr:  true,
			wantKind: failure.KindForbidden,
		},
		{
			name: "another doctor cannot accept",
			ctx:  actorContext("55555555-5555-5555-5555-555555555555", constant.RoleDoctor),
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(pendingRequest(), nil)
			},
			wantErr:  true,
			wantKind: failure.KindForbidden,
		},
		{
			name: "request not found",
			ctx:  actorContext(doctorID, constant.RoleDoctor),
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(model.AppointmentRequest{}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newEngine(ctrl)
			tt.setupMock(m)

			res, err := svc.Transition(tt.ctx, requestID, dto.TransitionRequest{Status: string(model.CommandAccepted)})

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantKind != "" {
					assert.Equal(t, tt.wantKind, failure.GetKind(err))
				}

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.NotEmpty(t, res.AppointmentID)
		})
	}
}

func TestRequestService_Transition_Reject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		setupMock  func(m *engineMocks)
		wantErr    bool
		wantKind   failure.Kind
		wantStatus string
		wantNotif  string
	}{
		{
			name: "first booking reject closes the request",
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(pendingRequest(), nil)

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, notification notifModel.Notification) error {
						assert.Equal(t, notifModel.TypeAppointmentRejected, notification.Type)

						return nil
					})

				m.allowAsync()
			},
			wantStatus: model.StatusRejected,
		},
		{
			name: "reschedule reject keeps the original booking",
			setupMock: func(m *engineMocks) {
				req := pendingRequest()
				req.AppointmentID = sql.NullString{String: apptID, Valid: true}

				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(req, nil)

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, notification notifModel.Notification) error {
						assert.Equal(t, notifModel.TypeAppointmentConfirmed, notification.Type)

						return nil
					})

				m.allowAsync()
			},
			wantStatus: model.StatusConfirmed,
		},
		{
			name: "reject from cancelled is invalid",
			setupMock: func(m *engineMocks) {
				req := pendingRequest()
				req.Status = model.StatusCancelled

				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(req, nil)
			},
			wantErr:  true,
			wantKind: failure.KindInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newEngine(ctrl)
			tt.setupMock(m)

			ctx := actorContext(doctorID, constant.RoleDoctor)
			res, err := svc.Transition(ctx, requestID, dto.TransitionRequest{Status: string(model.CommandRejected)})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
		})
	}
}

func TestRequestService_Transition_SuggestAlternative(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name      string
		req       dto.TransitionRequest
		setupMock func(m *engineMocks)
		wantErr   bool
		wantKind  failure.Kind
	}{
		{
			name: "flexible first booking accepts a counter-proposal",
			req: dto.TransitionRequest{
				Status:             string(model.CommandDoctorSuggestedAlternative),
				SuggestedDate:      "2025-03-02",
				SuggestedTimeStart: "10:00",
			},
			setupMock: func(m *engineMocks) {
				req := pendingRequest()
				req.IsFlexible = true

				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(req, nil)

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, fields map[string]any, _ any) error {
						suggested, ok := fields[model.FieldSuggestedDate].(sql.NullTime)
						assert.True(t, ok)
						assert.True(t, suggested.Valid)

						return nil
					})

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, notification notifModel.Notification) error {
						assert.Equal(t, patientID, notification.UserID)
						assert.Equal(t, notifModel.TypeAppointmentSuggested, notification.Type)

						return nil
					})

				m.allowAsync()
			},
		},
		{
			name: "inflexible first booking refuses a counter-proposal",
			req: dto.TransitionRequest{
				Status:             string(model.CommandDoctorSuggestedAlternative),
				SuggestedDate:      "2025-03-02",
				SuggestedTimeStart: "10:00",
			},
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(pendingRequest(), nil)
			},
			wantErr:  true,
			wantKind: failure.KindValidation,
		},
		{
			name: "reschedule flow needs no flexibility flag",
			req: dto.TransitionRequest{
				Status:             string(model.CommandDoctorSuggestedAlternative),
				SuggestedDate:      "2025-03-02",
				SuggestedTimeStart: "10:00",
			},
			setupMock: func(m *engineMocks) {
				req := pendingRequest()
				req.AppointmentID = sql.NullString{String: apptID, Valid: true}

				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(req, nil)

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.allowAsync()
			},
		},
		{
			name: "suggestion without a slot",
			req: dto.TransitionRequest{
				Status: string(model.CommandDoctorSuggestedAlternative),
			},
			setupMock: func(m *engineMocks) {
				req := pendingRequest()
				req.IsFlexible = true

				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(req, nil)
			},
			wantErr:  true,
			wantKind: failure.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newEngine(ctrl)
			tt.setupMock(m)

			ctx := actorContext(doctorID, constant.RoleDoctor)
			res, err := svc.Transition(ctx, requestID, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, model.StatusDoctorSuggestedAlternative, res.Status)
			assert.NotEmpty(t, res.SuggestedDate)
			assert.NotEmpty(t, res.SuggestedTimeStart)
		})
	}
}

func TestRequestService_Transition_AcceptAlternative(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name      string
		setupMock func(m *engineMocks)
		wantErr   bool
		wantKind  failure.Kind
	}{
		{
			name: "first booking confirms at the suggested slot",
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(suggestedRequest(), nil)

				m.apptRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, appointment apptModel.Appointment) error {
						assert.Equal(t, 10, appointment.AppointmentDate.Hour())
						assert.Equal(t, 2, int(appointment.AppointmentDate.Day()))

						return nil
					})

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, fields map[string]any, _ any) error {
						suggested, ok := fields[model.FieldSuggestedDate].(sql.NullTime)
						assert.True(t, ok)
						assert.False(t, suggested.Valid)

						return nil
					})

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, notification notifModel.Notification) error {
						assert.Equal(t, doctorID, notification.UserID)
						assert.Equal(t, notifModel.TypeAppointmentConfirmed, notification.Type)

						return nil
					})

				m.allowAsync()
			},
		},
		{
			name: "reschedule confirms by moving the appointment",
			setupMock: func(m *engineMocks) {
				req := suggestedRequest()
				req.AppointmentID = sql.NullString{String: apptID, Valid: true}

				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(req, nil)

				m.apptRepo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(scheduledAppointment(1), nil)

				m.apptRepo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, fields map[string]any, _ any) error {
						assert.Equal(t, 2, fields[apptModel.FieldRescheduleCount])

						return nil
					})

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.allowAsync()
			},
		},
		{
			name: "second accept of the same suggestion is invalid",
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(confirmedRequest(), nil)
			},
			wantErr:  true,
			wantKind: failure.KindInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newEngine(ctrl)
			tt.setupMock(m)

			ctx := actorContext(patientID, constant.RolePatient)
			res, err := svc.Transition(ctx, requestID, dto.TransitionRequest{Status: string(model.CommandPatientAcceptedAlternative)})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, model.StatusConfirmed, res.Status)
			assert.Empty(t, res.SuggestedDate)
			assert.Empty(t, res.SuggestedTimeStart)
			assert.NotEmpty(t, res.AppointmentID)
		})
	}
}

func TestRequestService_Transition_RejectAlternative(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		setupMock  func(m *engineMocks)
		wantErr    bool
		wantKind   failure.Kind
		wantStatus string
	}{
		{
			name: "first booking is cancelled",
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(suggestedRequest(), nil)

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, notification notifModel.Notification) error {
						assert.Equal(t, notifModel.TypeAppointmentCancelled, notification.Type)

						return nil
					})

				m.allowAsync()
			},
			wantStatus: model.StatusCancelled,
		},
		{
			name: "reschedule keeps the original booking",
			setupMock: func(m *engineMocks) {
				req := suggestedRequest()
				req.AppointmentID = sql.NullString{String: apptID, Valid: true}

				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(req, nil)

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, notification notifModel.Notification) error {
						assert.Equal(t, notifModel.TypeAppointmentConfirmed, notification.Type)

						return nil
					})

				m.allowAsync()
			},
			wantStatus: model.StatusConfirmed,
		},
		{
			name: "no pending suggestion",
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(pendingRequest(), nil)
			},
			wantErr:  true,
			wantKind: failure.KindInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newEngine(ctrl)
			tt.setupMock(m)

			ctx := actorContext(patientID, constant.RolePatient)
			res, err := svc.Transition(ctx, requestID, dto.TransitionRequest{Status: string(model.CommandPatientRejectedAlternative)})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Empty(t, res.SuggestedDate)
			assert.Empty(t, res.SuggestedTimeStart)
		})
	}
}

func TestRequestService_Transition_Reschedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	newSlot := dto.TransitionRequest{
		Status:             string(model.CommandPending),
		PreferredDate:      "2025-03-10",
		PreferredTimeStart: "14:00",
	}

	tests := []struct {
		name      string
		req       dto.TransitionRequest
		setupMock func(m *engineMocks)
		wantErr   bool
		wantKind  failure.Kind
	}{
		{
			name: "reschedule reopens the negotiation",
			req:  newSlot,
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(confirmedRequest(), nil)

				m.apptRepo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(scheduledAppointment(1), nil)

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, notification notifModel.Notification) error {
						assert.Equal(t, doctorID, notification.UserID)
						assert.Equal(t, notifModel.TypeAppointmentRequest, notification.Type)

						return nil
					})

				m.allowAsync()
			},
		},
		{
			name: "third reschedule is refused",
			req:  newSlot,
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(confirmedRequest(), nil)

				m.apptRepo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(scheduledAppointment(apptModel.MaxReschedules), nil)
			},
			wantErr:  true,
			wantKind: failure.KindLimitExceeded,
		},
		{
			name: "reschedule without a new slot",
			req:  dto.TransitionRequest{Status: string(model.CommandPending)},
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(confirmedRequest(), nil)

				m.apptRepo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(scheduledAppointment(0), nil)
			},
			wantErr:  true,
			wantKind: failure.KindValidation,
		},
		{
			name: "reschedule of a pending request is invalid",
			req:  newSlot,
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(pendingRequest(), nil)
			},
			wantErr:  true,
			wantKind: failure.KindInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newEngine(ctrl)
			tt.setupMock(m)

			ctx := actorContext(patientID, constant.RolePatient)
			res, err := svc.Transition(ctx, requestID, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, model.StatusPending, res.Status)
			assert.Equal(t, "2025-03-10", res.PreferredDate)
			assert.Equal(t, "14:00", res.PreferredTimeStart)
			assert.Empty(t, res.SuggestedDate)
			assert.Equal(t, apptID, res.AppointmentID)
		})
	}
}

func TestRequestService_Transition_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name      string
		setupMock func(m *engineMocks)
		wantErr   bool
		wantKind  failure.Kind
	}{
		{
			name: "cancel of a pending request",
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(pendingRequest(), nil)

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, notification notifModel.Notification) error {
						assert.Equal(t, doctorID, notification.UserID)
						assert.Equal(t, notifModel.TypeAppointmentCancelled, notification.Type)

						return nil
					})

				m.allowAsync()
			},
		},
		{
			name: "cancel of a confirmed request also cancels the appointment",
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(confirmedRequest(), nil)

				m.apptRepo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, fields map[string]any, _ any) error {
						assert.Equal(t, apptModel.StatusCancelled, fields[apptModel.FieldStatus])

						return nil
					})

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.allowAsync()
			},
		},
		{
			name: "cancel while a suggestion is open clears the suggested slot",
			setupMock: func(m *engineMocks) {
				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(suggestedRequest(), nil)

				m.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, fields map[string]any, _ any) error {
						suggested, ok := fields[model.FieldSuggestedDate].(sql.NullTime)
						assert.True(t, ok)
						assert.False(t, suggested.Valid)

						suggestedStart, ok := fields[model.FieldSuggestedTimeStart].(sql.NullTime)
						assert.True(t, ok)
						assert.False(t, suggestedStart.Valid)

						return nil
					})

				m.notifRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.allowAsync()
			},
		},
		{
			name: "cancel of an already cancelled request is invalid",
			setupMock: func(m *engineMocks) {
				req := pendingRequest()
				req.Status = model.StatusCancelled

				m.repo.EXPECT().
					GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(req, nil)
			},
			wantErr:  true,
			wantKind: failure.KindInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newEngine(ctrl)
			tt.setupMock(m)

			ctx := actorContext(patientID, constant.RolePatient)
			res, err := svc.Transition(ctx, requestID, dto.TransitionRequest{Status: string(model.CommandCancelled)})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, res.Status)
			assert.Empty(t, res.SuggestedDate)
			assert.Empty(t, res.SuggestedTimeStart)
		})
	}
}

func TestRequestService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(m *engineMocks)
		wantErr   bool
		wantKind  failure.Kind
	}{
		{
			name: "cache miss, owner reads from db",
			ctx:  actorContext(patientID, constant.RolePatient),
			setupMock: func(m *engineMocks) {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingRequest(), nil)

				m.cache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
		},
		{
			name: "not found",
			ctx:  actorContext(patientID, constant.RolePatient),
			setupMock: func(m *engineMocks) {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.AppointmentRequest{}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindNotFound,
		},
		{
			name: "a stranger cannot read it",
			ctx:  actorContext("55555555-5555-5555-5555-555555555555", constant.RolePatient),
			setupMock: func(m *engineMocks) {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingRequest(), nil)
			},
			wantErr:  true,
			wantKind: failure.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newEngine(ctrl)
			tt.setupMock(m)

			res, err := svc.Get(tt.ctx, requestID)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, requestID, res.ID)
		})
	}
}

func TestRequestService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newEngine(ctrl)

	m.cache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("cache miss")).
		Times(2)

	m.repo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(1, nil)

	m.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.AppointmentRequest{pendingRequest()}, nil)

	m.cache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	params := gDto.QueryParams{Page: 1, Limit: 10, SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirDesc}
	filter := shared.FilterByID(patientID, model.FieldPatientID, model.TableName)

	ctx := actorContext(patientID, constant.RolePatient)
	res, err := svc.GetAll(ctx, params, filter)

	assert.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Len(t, res.Requests, 1)
}
