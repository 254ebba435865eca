package model

import (
	"database/sql"
	"time"

	"medsched/shared/model"
)

const (
	TableName  = "appointments"
	EntityName = "appointment"

	FieldID              = "id"
	FieldPatientID       = "patient_id"
	FieldDoctorID        = "doctor_id"
	FieldClinicID        = "clinic_id"
	FieldAppointmentDate = "appointment_date"
	FieldDurationMinutes = "duration_minutes"
	FieldStatus          = "status"
	FieldRescheduleCount = "reschedule_count"
	FieldNotes           = "notes"
)

const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// MaxReschedules caps how many times a confirmed appointment may be moved.
const MaxReschedules = 2

const DefaultDurationMinutes = 30

type Appointment struct {
	ID              string         `db:"id"`
	PatientID       string         `db:"patient_id"`
	DoctorID        string         `db:"doctor_id"`
	ClinicID        sql.NullString `db:"clinic_id"`
	AppointmentDate time.Time      `db:"appointment_date"`
	DurationMinutes int            `db:"duration_minutes"`
	Status          string         `db:"status"`
	RescheduleCount int            `db:"reschedule_count"`
	Notes           sql.NullString `db:"notes"`
	model.Metadata
}

// CanReschedule reports whether another reschedule negotiation may start.
func (a *Appointment) CanReschedule() bool {
	return a.RescheduleCount < MaxReschedules
}
