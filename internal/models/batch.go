package models

import "time"

// Batch groups students that share a class, subject, schedule and fee.
type Batch struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	BatchName     string    `json:"batch_name"`
	PaymentAmount float64   `json:"payment_amount"`
	Class         string    `json:"class"`
	Subject       string    `json:"subject"`
	Days          []string  `json:"days"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
