package models

// ClassSession is one class meeting for a group. Times are zero-padded
// "HH:MM" strings as stored by the administrative system.
type ClassSession struct {
	ID        string `db:"id" json:"id"`
	GroupID   string `db:"group_id" json:"group_id"`
	Day       string `db:"day" json:"day"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	Subject   string `db:"subject" json:"subject"`
}

// EmptySlot marks a weekday column with no class in a schedule row.
const EmptySlot = "-"

// ScheduleRow is one row of the UI-ready weekly grid: a time range plus one
// subject-or-placeholder slot per business day. Built fresh per query, never
// persisted.
type ScheduleRow struct {
	Time string `json:"time"`
	Lun  string `json:"lun"`
	Mar  string `json:"mar"`
	Mie  string `json:"mie"`
	Jue  string `json:"jue"`
	Vie  string `json:"vie"`
}
