package grading_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/grading"
	"github.com/jpainam/discolaire-sub011/core/school"
	"github.com/jpainam/discolaire-sub011/tests"
)

type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, core.Job) error { return errors.New("broker down") }

func TestService_CreateSheet(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		_, _, err := svcs.Grading.CreateSheet(ctx, grading.NewGradeSheet{
			SubjectID: testutil.MathID,
			TermID:    testutil.Month1ID,
			Name:      "  ",
			CreatedBy: "teacher-1",
			Grades:    []grading.NewGrade{testutil.Grade(testutil.AliceID, 25)},
		})
		require.Error(t, err)
		assert.Equal(t, 0, svcs.Queue.Len(grading.NotificationJob))
	})

	t.Run("unknown term", func(t *testing.T) {
		_, _, err := svcs.Grading.CreateSheet(ctx, grading.NewGradeSheet{
			SubjectID: testutil.MathID,
			TermID:    "nope",
			Name:      "Test",
			CreatedBy: "teacher-1",
			Grades:    []grading.NewGrade{testutil.Grade(testutil.AliceID, 12)},
		})
		assert.Equal(t, school.ErrTermNotFound, errors.Cause(err))
	})

	t.Run("absent grades are zeroed", func(t *testing.T) {
		sheet, entries := testutil.CreateSheet(t, svcs.Grading, testutil.MathID, testutil.Month1ID, " Test 1 ",
			grading.NewGrade{StudentID: testutil.AliceID, Grade: 13, IsAbsent: true},
			testutil.Grade(testutil.BrunoID, 11),
		)
		assert.Equal(t, "Test 1", sheet.Name)
		assert.Equal(t, testutil.ClassroomID, sheet.ClassroomID)
		require.Len(t, entries, 2)
		assert.True(t, entries[0].IsAbsent)
		assert.Equal(t, 0.0, entries[0].Grade)
		for _, e := range entries {
			assert.Equal(t, sheet.ID, e.GradeSheetID)
			assert.Equal(t, testutil.MathID, e.SubjectID)
		}
		assert.Equal(t, 1, svcs.Queue.Len(grading.NotificationJob))

		job, err := svcs.Queue.Dequeue(ctx, grading.NotificationJob)
		require.NoError(t, err)
		var payload grading.NotificationPayload
		require.NoError(t, job.Decode(&payload))
		assert.Equal(t, sheet.ID, payload.SheetID)
	})
}

func TestService_CreateSheet_queueFailure(t *testing.T) {
	svcs := testutil.NewServices()
	svc := grading.NewService(svcs.GradingRepo, svcs.SchoolRepo, failingQueue{}, svcs.Mailer, svcs.Validate, svcs.Logger)

	sheet, _ := testutil.CreateSheet(t, svc, testutil.FrenchID, testutil.Month1ID, "Dictation", testutil.Grade(testutil.DianeID, 9))
	got, err := svc.GetSheet(context.Background(), sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, sheet, got)
}

func TestService_CorrectGrade(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()
	sheet, _ := testutil.CreateSheet(t, svcs.Grading, testutil.MathID, testutil.Month1ID, "Test 1",
		testutil.Grade(testutil.AliceID, 12),
		testutil.Absent(testutil.BrunoID),
	)

	entry, err := svcs.Grading.CorrectGrade(ctx, sheet.ID, testutil.BrunoID, grading.GradeCorrection{
		Grade: 14, CorrectedBy: "teacher-1", Reason: "sat the make-up test",
	})
	require.NoError(t, err)
	assert.False(t, entry.IsAbsent)
	assert.Equal(t, 14.0, entry.Grade)

	entry, err = svcs.Grading.CorrectGrade(ctx, sheet.ID, testutil.BrunoID, grading.GradeCorrection{
		Grade: 15, CorrectedBy: "teacher-1",
	})
	require.NoError(t, err)

	corrections := svcs.DB.Corrections(entry.ID)
	require.Len(t, corrections, 2)
	assert.True(t, corrections[0].OldIsAbsent)
	assert.Equal(t, 14.0, corrections[0].NewGrade)
	assert.Equal(t, 14.0, corrections[1].OldGrade)
	assert.Equal(t, 15.0, corrections[1].NewGrade)

	_, err = svcs.Grading.CorrectGrade(ctx, sheet.ID, testutil.CarlID, grading.GradeCorrection{Grade: 10, CorrectedBy: "t"})
	assert.Equal(t, grading.ErrGradeNotFound, errors.Cause(err))

	_, err = svcs.Grading.CorrectGrade(ctx, sheet.ID, testutil.AliceID, grading.GradeCorrection{Grade: 10})
	assert.Error(t, err) // corrected_by is required
}

func TestService_Collect(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()
	testutil.CreateSheet(t, svcs.Grading, testutil.MathID, testutil.Month1ID, "M1", testutil.Grade(testutil.AliceID, 10))
	testutil.CreateSheet(t, svcs.Grading, testutil.MathID, testutil.Month2ID, "M2", testutil.Grade(testutil.AliceID, 14))
	testutil.CreateSheet(t, svcs.Grading, testutil.MathID, testutil.QuarterID, "Q", testutil.Grade(testutil.AliceID, 18))

	tests := []struct {
		name    string
		termIDs []string
		want    []float64
	}{
		{name: "month", termIDs: []string{testutil.Month1ID}, want: []float64{10}},
		{name: "quarter window", termIDs: []string{testutil.QuarterID, testutil.Month1ID, testutil.Month2ID}, want: []float64{10, 14, 18}},
		{name: "no sheet", termIDs: []string{testutil.AnnualID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := svcs.Grading.Collect(ctx, testutil.ClassroomID, tt.termIDs)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, c.Grades(testutil.AliceID, testutil.MathID))
		})
	}
}

func TestService_NotifyGradesPublished(t *testing.T) {
	svcs := testutil.NewServices()
	sheet, _ := testutil.CreateSheet(t, svcs.Grading, testutil.FrenchID, testutil.Month1ID, "Essay",
		testutil.Grade(testutil.AliceID, 13.5),
		testutil.Grade(testutil.BrunoID, 8),
		testutil.Grade(testutil.CarlID, 11),
	)

	require.NoError(t, svcs.Grading.NotifyGradesPublished(context.Background(), sheet.ID))
	sent := svcs.Mailer.SentMessages()
	require.Len(t, sent, 2)
	for _, msg := range sent {
		assert.Equal(t, "New grade: Essay", msg.Subject)
		assert.Contains(t, msg.TextContent, "Classroom average: 10.83")
		assert.Contains(t, msg.HTMLContent, "French")
	}

	err := svcs.Grading.NotifyGradesPublished(context.Background(), "nope")
	assert.Equal(t, grading.ErrSheetNotFound, errors.Cause(err))
}
