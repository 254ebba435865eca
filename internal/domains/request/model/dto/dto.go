package dto

import (
	"database/sql"
	"time"

	"medsched/internal/domains/request/model"
	"medsched/shared"
	gDto "medsched/shared/dto"
	gModel "medsched/shared/model"
	"medsched/shared/timezone"

	"github.com/google/uuid"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type SubmitRequest struct {
	DoctorID           string `json:"doctor_id"                 validate:"required,uuid"`
	ClinicID           string `json:"clinic_id"                 validate:"omitempty,uuid"`
	PreferredDate      string `json:"preferred_date"            validate:"required"`
	PreferredTimeStart string `json:"preferred_time_slot_start" validate:"required"`
	IsFlexible         bool   `json:"is_flexible"`
	Reason             string `json:"reason"                    validate:"omitempty,max=500"`
	Notes              string `json:"notes"                     validate:"omitempty,max=2000"`
}

func (c *SubmitRequest) ToModel(patientID string) (model.AppointmentRequest, error) {
	preferredDate, err := timezone.Parse(dateLayout, c.PreferredDate)
	if err != nil {
		return model.AppointmentRequest{}, err
	}

	preferredTime, err := timezone.Parse(timeLayout, c.PreferredTimeStart)
	if err != nil {
		return model.AppointmentRequest{}, err
	}

	return model.AppointmentRequest{
		ID:                 uuid.NewString(),
		PatientID:          patientID,
		DoctorID:           c.DoctorID,
		ClinicID:           toNullString(c.ClinicID),
		PreferredDate:      sql.NullTime{Time: preferredDate, Valid: true},
		PreferredTimeStart: sql.NullTime{Time: preferredTime, Valid: true},
		IsFlexible:         c.IsFlexible,
		Status:             model.StatusPending,
		Reason:             toNullString(c.Reason),
		Notes:              toNullString(c.Notes),
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  patientID,
			ModifiedBy: patientID,
		},
	}, nil
}

// TransitionRequest carries a negotiation command. The status field holds the
// command name, not the status that will be persisted.
type TransitionRequest struct {
	Status             string `json:"status"                    validate:"required,oneof=accepted rejected doctor_suggested_alternative patient_accepted_alternative patient_rejected_alternative pending cancelled"`
	PreferredDate      string `json:"preferred_date"            validate:"omitempty"`
	PreferredTimeStart string `json:"preferred_time_slot_start" validate:"omitempty"`
	SuggestedDate      string `json:"suggested_date"            validate:"omitempty"`
	SuggestedTimeStart string `json:"suggested_time_slot_start" validate:"omitempty"`
	Notes              string `json:"notes"                     validate:"omitempty,max=2000"`
}

func (c *TransitionRequest) Command() model.Command {
	return model.Command(c.Status)
}

// PreferredSlot parses the replacement slot carried by a reschedule command.
func (c *TransitionRequest) PreferredSlot() (date, clock time.Time, ok bool, err error) {
	return parseSlot(c.PreferredDate, c.PreferredTimeStart)
}

// SuggestedSlot parses the counter-proposal slot carried by a doctor suggestion.
func (c *TransitionRequest) SuggestedSlot() (date, clock time.Time, ok bool, err error) {
	return parseSlot(c.SuggestedDate, c.SuggestedTimeStart)
}

func parseSlot(dateStr, timeStr string) (date, clock time.Time, ok bool, err error) {
	if dateStr == "" || timeStr == "" {
		return date, clock, false, nil
	}

	date, err = timezone.Parse(dateLayout, dateStr)
	if err != nil {
		return date, clock, false, err
	}

	clock, err = timezone.Parse(timeLayout, timeStr)
	if err != nil {
		return date, clock, false, err
	}

	return date, clock, true, nil
}

type RequestResponse struct {
	ID                 string `json:"id"`
	PatientID          string `json:"patient_id"`
	DoctorID           string `json:"doctor_id"`
	ClinicID           string `json:"clinic_id,omitempty"`
	PreferredDate      string `json:"preferred_date,omitempty"`
	PreferredTimeStart string `json:"preferred_time_slot_start,omitempty"`
	IsFlexible         bool   `json:"is_flexible"`
	Status             string `json:"status"`
	Reason             string `json:"reason,omitempty"`
	Notes              string `json:"notes,omitempty"`
	SuggestedDate      string `json:"suggested_date,omitempty"`
	SuggestedTimeStart string `json:"suggested_time_slot_start,omitempty"`
	AppointmentID      string `json:"appointment_id,omitempty"`
	gDto.Metadata
}

func (r *RequestResponse) FromModel(mod model.AppointmentRequest) {
	r.ID = mod.ID
	r.PatientID = mod.PatientID
	r.DoctorID = mod.DoctorID
	r.ClinicID = mod.ClinicID.String
	r.PreferredDate = formatNullTime(mod.PreferredDate, dateLayout)
	r.PreferredTimeStart = formatNullTime(mod.PreferredTimeStart, timeLayout)
	r.IsFlexible = mod.IsFlexible
	r.Status = mod.Status
	r.Reason = mod.Reason.String
	r.Notes = mod.Notes.String
	r.SuggestedDate = formatNullTime(mod.SuggestedDate, dateLayout)
	r.SuggestedTimeStart = formatNullTime(mod.SuggestedTimeStart, timeLayout)
	r.AppointmentID = mod.AppointmentID.String
	r.Metadata.FromModel(mod.Metadata)
}

type GetRequestsResponse struct {
	Requests  []RequestResponse `json:"requests"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetRequestsResponse) FromModels(models []model.AppointmentRequest, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Requests = make([]RequestResponse, len(models))
	for i, mod := range models {
		r.Requests[i].FromModel(mod)
	}
}

func toNullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func formatNullTime(value sql.NullTime, layout string) string {
	if !value.Valid {
		return ""
	}

	return value.Time.Format(layout)
}
