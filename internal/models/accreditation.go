package models

import "time"

// AccreditedSubject records a subject a student has accredited. Appended by
// an administrative system outside this service; read-only here.
type AccreditedSubject struct {
	StudentID    string     `db:"student_id" json:"student_id"`
	Subject      string     `db:"subject" json:"subject"`
	AccreditedAt *time.Time `db:"accredited_at" json:"accredited_at,omitempty"`
}
