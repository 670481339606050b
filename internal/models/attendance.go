package models

import "time"

// AttendanceRecord is an append-only batch-day absence sheet.
type AttendanceRecord struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	BatchID          *string   `json:"batch_id,omitempty"`
	Date             string    `json:"date"`
	AbsentStudentIDs []string  `json:"absent_student_ids"`
	AllPresent       bool      `json:"all_present"`
	CreatedAt        time.Time `json:"created_at"`
}

// AttendanceFilter narrows attendance listings.
type AttendanceFilter struct {
	Date    string
	BatchID string
}
