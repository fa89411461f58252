package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// EventRegistration tracks a user's registration and attendance for an
// event. One row per (event, user).
type EventRegistration struct {
	ID         uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID    uuid.UUID               `gorm:"column:event_id;type:uuid;not null;uniqueIndex:idx_event_reg_user"`
	UserID     uuid.UUID               `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_event_reg_user"`
	Status     enums.RegistrationStatus `gorm:"column:status;type:registration_status_enum;not null;default:'registered'"`
	Attendance enums.AttendanceStatus   `gorm:"column:attendance;type:attendance_status_enum;not null;default:'unset'"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
