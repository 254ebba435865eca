package dto

import (
	"medsched/internal/domains/notification/model"
	"medsched/shared"
	"medsched/shared/constant"
	gDto "medsched/shared/dto"
	"medsched/shared/timezone"
)

type NotificationResponse struct {
	ID                   string `json:"id"`
	UserID               string `json:"user_id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	Message              string `json:"message"`
	AppointmentRequestID string `json:"appointment_request_id,omitempty"`
	AppointmentID        string `json:"appointment_id,omitempty"`
	Status               string `json:"status"`
	ReadAt               string `json:"read_at,omitempty"`
	ArchivedAt           string `json:"archived_at,omitempty"`
	gDto.Metadata
}

func (r *NotificationResponse) FromModel(mod model.Notification) {
	r.ID = mod.ID
	r.UserID = mod.UserID
	r.Type = mod.Type
	r.Title = mod.Title
	r.Message = mod.Message
	r.AppointmentRequestID = mod.AppointmentRequestID.String
	r.AppointmentID = mod.AppointmentID.String
	r.Status = mod.Status

	if mod.ReadAt.Valid {
		r.ReadAt = timezone.Format(mod.ReadAt.Time, constant.DateFormat)
	}

	if mod.ArchivedAt.Valid {
		r.ArchivedAt = timezone.Format(mod.ArchivedAt.Time, constant.DateFormat)
	}

	r.Metadata.FromModel(mod.Metadata)
}

type GetNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	TotalPage     int                    `json:"total_page"`
	TotalData     int                    `json:"total_data"`
}

func (r *GetNotificationsResponse) FromModels(models []model.Notification, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Notifications = make([]NotificationResponse, len(models))
	for i, mod := range models {
		r.Notifications[i].FromModel(mod)
	}
}
