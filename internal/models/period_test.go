package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyLabel(t *testing.T) {
	ts := time.Date(2025, time.March, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, PeriodLabel("07-03-25"), DailyLabel(ts))
	assert.Equal(t, PeriodLabel("01-01-00"), DailyLabel(time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestBillingPeriodLabel(t *testing.T) {
	ts := time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, PeriodLabel("January_2025"), BillingPeriodLabel(ts))
}

func TestLabelGranularitiesDiffer(t *testing.T) {
	ts := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, DailyLabel(ts), BillingPeriodLabel(ts))
}

func TestWithoutLabelsPreservesOrder(t *testing.T) {
	labels := []PeriodLabel{"March_2025", "April_2025", "May_2025"}
	assert.Equal(t, []PeriodLabel{"April_2025"}, WithoutLabels(labels, "March_2025", "May_2025", "June_2025"))
	assert.Equal(t, []PeriodLabel{}, WithoutLabels(nil, "March_2025"))
}

func TestBlankLabel(t *testing.T) {
	assert.True(t, PeriodLabel("  ").Blank())
	assert.False(t, PeriodLabel("May_2025").Blank())
}
