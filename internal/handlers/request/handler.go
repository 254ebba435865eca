package request

import (
	"net/http"

	"medsched/infras/otel"
	"medsched/internal/domains/request/model"
	"medsched/internal/domains/request/model/dto"
	"medsched/internal/domains/request/service"
	"medsched/shared/constant"
	gDto "medsched/shared/dto"
	"medsched/shared/validator"
	"medsched/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Request
	otel    otel.Otel
}

func New(service service.Request, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/appointment-requests", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.SubmitRequest)
		routerGroup.Get("/", handler.GetRequests)
		routerGroup.Get("/{id}", handler.GetRequestByID)
		routerGroup.Patch("/{id}", handler.TransitionRequest)
	})
}

// SubmitRequest opens a new appointment negotiation.
// @Summary Submit an appointment request
// @Description Create a new appointment request for the authenticated patient and notify the doctor.
// @Tags AppointmentRequest
// @Accept json
// @Produce json
// @Param request body dto.SubmitRequest true "Submit Appointment Request"
// @Success 201 {object} response.Data[dto.RequestResponse] "Appointment request created"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointment-requests [post]
// @Security BearerAuth
func (handler *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SubmitRequest")
	defer scope.End()

	req := dto.SubmitRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Submit(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to submit appointment request")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Appointment request submitted by user " + user)

	response.WithJSON(w, http.StatusCreated, res)
}

// TransitionRequest applies a negotiation command to an appointment request.
// @Summary Transition an appointment request
// @Description Apply a negotiation command (accept, reject, suggest alternative, respond to alternative, reschedule, cancel) to an appointment request.
// @Tags AppointmentRequest
// @Accept json
// @Produce json
// @Param id path string true "Appointment Request ID"
// @Param request body dto.TransitionRequest true "Transition Command"
// @Success 200 {object} response.Data[dto.RequestResponse] "Updated appointment request"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointment-requests/{id} [patch]
// @Security BearerAuth
func (handler *Handler) TransitionRequest(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".TransitionRequest")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.TransitionRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Transition(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("command", req.Status).Msg("failed to transition appointment request")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Appointment request transitioned by user " + user)

	response.WithJSON(w, http.StatusOK, res)
}

// GetRequests lists the caller's appointment requests.
// @Summary Get appointment requests
// @Description Retrieve the caller's appointment requests with optional status filtering and pagination. Admins see all requests.
// @Tags AppointmentRequest
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status (pending, confirmed, rejected, cancelled, doctor_suggested_alternative)"
// @Success 200 {object} response.Data[dto.GetRequestsResponse] "List of appointment requests"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointment-requests [get]
// @Security BearerAuth
func (handler *Handler) GetRequests(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRequests")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	switch role {
	case constant.RolePatient:
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldPatientID,
			Operator: gDto.FilterOperatorEq,
			Value:    user,
			Table:    model.TableName,
		})
	case constant.RoleDoctor:
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldDoctorID,
			Operator: gDto.FilterOperatorEq,
			Value:    user,
			Table:    model.TableName,
		})
	}

	if status := r.URL.Query().Get(constant.RequestParamStatus); status != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	requests, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get appointment requests")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Appointment requests retrieved successfully")

	response.WithJSON(w, http.StatusOK, requests)
}

// GetRequestByID retrieves a single appointment request.
// @Summary Get an appointment request by ID
// @Description Retrieve an appointment request by its unique identifier. Only the involved patient, doctor, or an admin may read it.
// @Tags AppointmentRequest
// @Accept json
// @Produce json
// @Param id path string true "Appointment Request ID"
// @Success 200 {object} response.Data[dto.RequestResponse] "Appointment request details"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointment-requests/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetRequestByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRequestByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	request, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get appointment request by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Appointment request retrieved successfully")

	response.WithJSON(w, http.StatusOK, request)
}
