package models

import "time"

// ConsultationType distinguishes how a student was looked up.
type ConsultationType string

const (
	ConsultationQRScan       ConsultationType = "qr_scan"
	ConsultationManualSearch ConsultationType = "manual_search"
)

// Detail returns the human-readable detail line stored with a consultation.
func (t ConsultationType) Detail() string {
	if t == ConsultationQRScan {
		return "Consulta por QR"
	}
	return "Consulta manual"
}

// ConsultationRecord is one lookup event tied to a student and the prefect
// who performed it. Written once, never mutated.
type ConsultationRecord struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	StudentName  string           `db:"student_name" json:"student_name"`
	PrefectID    string           `db:"prefect_id" json:"prefect_id"`
	PrefectEmail string           `db:"prefect_email" json:"prefect_email"`
	Type         ConsultationType `db:"consultation_type" json:"consultation_type"`
	Timestamp    time.Time        `db:"timestamp" json:"timestamp"`
	Details      string           `db:"details" json:"details"`
}

// Access record constants. Every successful lookup also appends an access
// record for the downstream door-audit system; the mobile app is modelled as
// a fixed door.
const (
	AccessDoorMobileApp      = "App Móvil"
	AccessRecordTypeConsulta = "consulta"
	AccessRecordTypeCode     = 0
)

// AccessRecord is the audit-trail entry consumed by the physical-access
// system. Independent of ConsultationRecord; the two writes are not atomic.
type AccessRecord struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	Door        string    `db:"door" json:"door"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
	RecordType  string    `db:"record_type" json:"record_type"`
	TypeCode    int       `db:"type_code" json:"type_code"`
	Justified   bool      `db:"justified" json:"justified"`
}
