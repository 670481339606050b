package models

import (
	"fmt"
	"strings"
	"time"
)

// PeriodLabel is one entry of a student's paid_months or due_months log.
//
// Two granularities coexist: payment toggles record the calendar day (DailyLabel)
// while rollovers record the billing month (BillingPeriodLabel). A toggle therefore
// only clears a due label that happens to carry the same day-level text; month-level
// dues are cleared through RemoveDue. Keep both constructors until the business
// decides on a single granularity.
type PeriodLabel string

// DailyLabel formats t as DD-MM-YY.
func DailyLabel(t time.Time) PeriodLabel {
	return PeriodLabel(fmt.Sprintf("%02d-%02d-%02d", t.Day(), int(t.Month()), t.Year()%100))
}

// BillingPeriodLabel formats t as Month_Year, e.g. January_2025.
func BillingPeriodLabel(t time.Time) PeriodLabel {
	return PeriodLabel(fmt.Sprintf("%s_%d", t.Month().String(), t.Year()))
}

func (l PeriodLabel) String() string { return string(l) }

// Blank reports whether the label carries no text.
func (l PeriodLabel) Blank() bool { return strings.TrimSpace(string(l)) == "" }

// ContainsLabel reports whether label is present in labels.
func ContainsLabel(labels []PeriodLabel, label PeriodLabel) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// WithoutLabels returns labels minus every entry in remove, preserving order.
func WithoutLabels(labels []PeriodLabel, remove ...PeriodLabel) []PeriodLabel {
	out := make([]PeriodLabel, 0, len(labels))
	for _, l := range labels {
		if !ContainsLabel(remove, l) {
			out = append(out, l)
		}
	}
	return out
}

// LabelsFromStrings converts raw strings, used at the storage boundary.
func LabelsFromStrings(raw []string) []PeriodLabel {
	out := make([]PeriodLabel, 0, len(raw))
	for _, r := range raw {
		out = append(out, PeriodLabel(r))
	}
	return out
}

// LabelStrings converts labels back to plain strings.
func LabelStrings(labels []PeriodLabel) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, string(l))
	}
	return out
}
