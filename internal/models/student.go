package models

import "time"

// AcademicStatus enumerates the registrar's standing for a student.
type AcademicStatus string

const (
	AcademicStatusActive      AcademicStatus = "active"
	AcademicStatusOther       AcademicStatus = "other"
	AcademicStatusUnspecified AcademicStatus = ""
)

// Student is a directory record keyed by boleta. The directory is owned by
// the school registrar; this service only reads it.
type Student struct {
	Boleta             string         `db:"boleta" json:"boleta"`
	Name               string         `db:"name" json:"name"`
	GroupID            string         `db:"group_id" json:"group_id"`
	Career             string         `db:"career" json:"career"`
	AcademicStatus     AcademicStatus `db:"academic_status" json:"academic_status"`
	Blocked            bool           `db:"blocked" json:"blocked"`
	Delays             int            `db:"delays" json:"delays"`
	MissingCredentials int            `db:"missing_credentials" json:"missing_credentials"`
	OpenDoor           bool           `db:"open_door" json:"open_door"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}
