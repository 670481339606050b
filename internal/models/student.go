package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Student is a learner admitted by an owner account.
type Student struct {
	ID            string        `json:"id"`
	OwnerID       string        `json:"owner_id"`
	Name          string        `json:"name"`
	PhoneNumber   string        `json:"phone_number"`
	BatchID       *string       `json:"batch_id,omitempty"`
	PaymentAmount float64       `json:"payment_amount"`
	PaymentStatus bool          `json:"payment_status"`
	PaidMonths    []PeriodLabel `json:"paid_months"`
	DueMonths     []PeriodLabel `json:"due_months"`
	Marks         []Mark        `json:"marks"`
	AdmissionDate string        `json:"admission_date,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Normalize replaces nil collections so clients always see arrays.
func (s *Student) Normalize() {
	if s.PaidMonths == nil {
		s.PaidMonths = []PeriodLabel{}
	}
	if s.DueMonths == nil {
		s.DueMonths = []PeriodLabel{}
	}
	if s.Marks == nil {
		s.Marks = []Mark{}
	}
}

// Mark is one subject result appended by a results submission.
type Mark struct {
	Subject  string    `json:"subject"`
	Total    MarkValue `json:"total"`
	Obtained MarkValue `json:"obtained"`
}

// MarkValue holds a score as text. Clients send numbers or words such as "Absent".
type MarkValue string

// UnmarshalJSON accepts JSON strings and numbers.
func (v *MarkValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = MarkValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("mark value must be a string or number: %w", err)
	}
	*v = MarkValue(n.String())
	return nil
}
