package model

import (
	"database/sql"
	"time"

	"medsched/shared/model"
)

const (
	TableName  = "appointment_requests"
	EntityName = "appointment_request"

	FieldID                 = "id"
	FieldPatientID          = "patient_id"
	FieldDoctorID           = "doctor_id"
	FieldClinicID           = "clinic_id"
	FieldPreferredDate      = "preferred_date"
	FieldPreferredTimeStart = "preferred_time_start"
	FieldIsFlexible         = "is_flexible"
	FieldStatus             = "status"
	FieldReason             = "reason"
	FieldNotes              = "notes"
	FieldSuggestedDate      = "suggested_date"
	FieldSuggestedTimeStart = "suggested_time_start"
	FieldAppointmentID      = "appointment_id"
)

// Persisted negotiation states. Commands are a different, wider set; see Command.
const (
	StatusPending                    = "pending"
	StatusConfirmed                  = "confirmed"
	StatusRejected                   = "rejected"
	StatusCancelled                  = "cancelled"
	StatusDoctorSuggestedAlternative = "doctor_suggested_alternative"
)

// Command is a caller-issued negotiation instruction. Commands map to a new
// persisted status plus side effects; they are not written back verbatim.
type Command string

const (
	CommandAccepted                   Command = "accepted"
	CommandRejected                   Command = "rejected"
	CommandDoctorSuggestedAlternative Command = "doctor_suggested_alternative"
	CommandPatientAcceptedAlternative Command = "patient_accepted_alternative"
	CommandPatientRejectedAlternative Command = "patient_rejected_alternative"
	CommandPending                    Command = "pending"
	CommandCancelled                  Command = "cancelled"
)

// DoctorIssued reports whether the command belongs to the doctor side of the
// negotiation. Every other valid command belongs to the patient.
func (c Command) DoctorIssued() bool {
	switch c {
	case CommandAccepted, CommandRejected, CommandDoctorSuggestedAlternative:
		return true
	default:
		return false
	}
}

// Phase is the negotiation position independent of whether the request is a
// first booking or a reschedule. Status strings overload the two flows; guards
// branch on (Phase, IsReschedule) and derive the persisted status from that
// pair instead.
type Phase string

const (
	PhaseAwaitingResponse Phase = "awaiting_response"
	PhaseSuggested        Phase = "suggested"
	PhaseSettled          Phase = "settled"
	PhaseClosed           Phase = "closed"
)

type AppointmentRequest struct {
	ID                 string         `db:"id"`
	PatientID          string         `db:"patient_id"`
	DoctorID           string         `db:"doctor_id"`
	ClinicID           sql.NullString `db:"clinic_id"`
	PreferredDate      sql.NullTime   `db:"preferred_date"`
	PreferredTimeStart sql.NullTime   `db:"preferred_time_start"`
	IsFlexible         bool           `db:"is_flexible"`
	Status             string         `db:"status"`
	Reason             sql.NullString `db:"reason"`
	Notes              sql.NullString `db:"notes"`
	SuggestedDate      sql.NullTime   `db:"suggested_date"`
	SuggestedTimeStart sql.NullTime   `db:"suggested_time_start"`
	AppointmentID      sql.NullString `db:"appointment_id"`
	model.Metadata
}

// Phase maps the persisted status onto the negotiation position.
func (r *AppointmentRequest) Phase() Phase {
	switch r.Status {
	case StatusPending:
		return PhaseAwaitingResponse
	case StatusDoctorSuggestedAlternative:
		return PhaseSuggested
	case StatusConfirmed:
		return PhaseSettled
	default:
		return PhaseClosed
	}
}

// IsReschedule reports whether this negotiation is anchored to an existing
// appointment. A linked appointment id is never cleared, so this is stable
// for the rest of the request's life.
func (r *AppointmentRequest) IsReschedule() bool {
	return r.AppointmentID.Valid
}

// HasPreferredSlot reports whether both halves of the live proposed slot are set.
func (r *AppointmentRequest) HasPreferredSlot() bool {
	return r.PreferredDate.Valid && r.PreferredTimeStart.Valid
}

// HasSuggestedSlot reports whether both halves of the doctor's counter-proposal
// are set. The two columns are always set or cleared together.
func (r *AppointmentRequest) HasSuggestedSlot() bool {
	return r.SuggestedDate.Valid && r.SuggestedTimeStart.Valid
}

// CombineSlot merges a date-only value and a clock-only value into a single
// timestamp in the application timezone.
func CombineSlot(date, clock time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
}
