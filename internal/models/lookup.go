package models

// LookupResult is the composed payload returned to the app after a scan or
// a manual selection: the student plus the weekly grid and accreditations.
type LookupResult struct {
	Student    *Student            `json:"student"`
	Schedule   []ScheduleRow       `json:"schedule"`
	Accredited []AccreditedSubject `json:"accredited"`
}
