package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

func TestAttendanceRecordAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	batch, err := env.batches.Create(ctx, ownerA, CreateBatchRequest{BatchName: "Morning"})
	require.NoError(t, err)
	absent := env.admit(t, ownerA, "Absent")

	record, err := env.attendance.Record(ctx, ownerA, RecordAttendanceRequest{
		Date:           "2025-03-14",
		BatchID:        &batch.ID,
		AbsentStudents: []string{absent.ID, absent.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{absent.ID}, record.AbsentStudentIDs)

	_, err = env.attendance.Record(ctx, ownerA, RecordAttendanceRequest{Date: "2025-03-15", AllPresent: true})
	require.NoError(t, err)

	records, err := env.attendance.List(ctx, ownerA, models.AttendanceFilter{Date: "2025-03-14"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, batch.ID, *records[0].BatchID)

	records, err = env.attendance.List(ctx, ownerB, models.AttendanceFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAttendanceRecordValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	theirs := env.admit(t, ownerB, "Theirs")
	mine := env.admit(t, ownerA, "Mine")

	_, err := env.attendance.Record(ctx, ownerA, RecordAttendanceRequest{Date: "14-03-2025"})
	assertAppError(t, err, appErrors.ErrValidation)

	_, err = env.attendance.Record(ctx, ownerA, RecordAttendanceRequest{Date: "2025-03-14", AllPresent: true, AbsentStudents: []string{mine.ID}})
	assertAppError(t, err, appErrors.ErrInvalidArgument)

	_, err = env.attendance.Record(ctx, ownerA, RecordAttendanceRequest{Date: "2025-03-14", AbsentStudents: []string{theirs.ID}})
	assertAppError(t, err, appErrors.ErrNotFound)

	missing := uuid.NewString()
	_, err = env.attendance.Record(ctx, ownerA, RecordAttendanceRequest{Date: "2025-03-14", BatchID: &missing})
	assertAppError(t, err, appErrors.ErrNotFound)

	_, err = env.attendance.List(ctx, ownerA, models.AttendanceFilter{Date: "yesterday"})
	assertAppError(t, err, appErrors.ErrInvalidArgument)

	_, err = env.attendance.List(ctx, ownerA, models.AttendanceFilter{BatchID: "nope"})
	assertAppError(t, err, appErrors.ErrInvalidArgument)
}
