package model

import (
	"database/sql"

	"medsched/shared/model"
)

const (
	TableName  = "notifications"
	EntityName = "notification"

	FieldID                   = "id"
	FieldUserID               = "user_id"
	FieldType                 = "type"
	FieldTitle                = "title"
	FieldMessage              = "message"
	FieldAppointmentRequestID = "appointment_request_id"
	FieldAppointmentID        = "appointment_id"
	FieldStatus               = "status"
	FieldReadAt               = "read_at"
	FieldArchivedAt           = "archived_at"
)

const (
	StatusUnread   = "unread"
	StatusRead     = "read"
	StatusArchived = "archived"
)

const (
	TypeAppointmentRequest   = "appointment_request"
	TypeAppointmentAccepted  = "appointment_accepted"
	TypeAppointmentConfirmed = "appointment_confirmed"
	TypeAppointmentRejected  = "appointment_rejected"
	TypeAppointmentSuggested = "appointment_suggested"
	TypeAppointmentCancelled = "appointment_cancelled"
)

type Notification struct {
	ID                   string         `db:"id"`
	UserID               string         `db:"user_id"`
	Type                 string         `db:"type"`
	Title                string         `db:"title"`
	Message              string         `db:"message"`
	AppointmentRequestID sql.NullString `db:"appointment_request_id"`
	AppointmentID        sql.NullString `db:"appointment_id"`
	Status               string         `db:"status"`
	ReadAt               sql.NullTime   `db:"read_at"`
	ArchivedAt           sql.NullTime   `db:"archived_at"`
	model.Metadata
}
