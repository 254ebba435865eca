package dto

import (
	"medsched/internal/domains/appointment/model"
	"medsched/shared"
	"medsched/shared/constant"
	gDto "medsched/shared/dto"
	"medsched/shared/timezone"
)

type AppointmentResponse struct {
	ID              string `json:"id"`
	PatientID       string `json:"patient_id"`
	DoctorID        string `json:"doctor_id"`
	ClinicID        string `json:"clinic_id,omitempty"`
	AppointmentDate string `json:"appointment_date"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	RescheduleCount int    `json:"reschedule_count"`
	Notes           string `json:"notes,omitempty"`
	gDto.Metadata
}

func (r *AppointmentResponse) FromModel(mod model.Appointment) {
	r.ID = mod.ID
	r.PatientID = mod.PatientID
	r.DoctorID = mod.DoctorID
	r.ClinicID = mod.ClinicID.String
	r.AppointmentDate = timezone.Format(mod.AppointmentDate, constant.DateFormat)
	r.DurationMinutes = mod.DurationMinutes
	r.Status = mod.Status
	r.RescheduleCount = mod.RescheduleCount
	r.Notes = mod.Notes.String
	r.Metadata.FromModel(mod.Metadata)
}

type GetAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetAppointmentsResponse) FromModels(models []model.Appointment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Appointments = make([]AppointmentResponse, len(models))
	for i, mod := range models {
		r.Appointments[i].FromModel(mod)
	}
}
