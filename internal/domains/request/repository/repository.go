package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"medsched/infras/otel"
	"medsched/infras/postgres"
	"medsched/internal/domains/request/model"
	gDto "medsched/shared/dto"
	gRepo "medsched/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Request interface {
	Insert(ctx context.Context, model model.AppointmentRequest) error
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.AppointmentRequest) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.AppointmentRequest, error)
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.AppointmentRequest, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.AppointmentRequest, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.AppointmentRequest]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Request {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.AppointmentRequest](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
