package models

import "time"

// NotificationKind identifies the alert raised by the rule engine.
type NotificationKind string

const (
	NotificationAbsence       NotificationKind = "ABSENCE"
	NotificationTrainerAbsent NotificationKind = "TRAINER_ABSENT"
)

// NotificationEvent is handed to the notification pipeline for admins and managers.
type NotificationEvent struct {
	Kind       NotificationKind `json:"kind"`
	Message    string           `json:"message"`
	StudentID  string           `json:"student_id,omitempty"`
	TrainerID  string           `json:"trainer_id,omitempty"`
	RecordID   string           `json:"record_id,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
