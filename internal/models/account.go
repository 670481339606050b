package models

// Account is the owner profile shown by the dashboard header.
type Account struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
	Plan  string `db:"plan" json:"plan"`
}
