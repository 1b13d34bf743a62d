package attendance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/attendance"
	"github.com/jpainam/discolaire-sub011/tests"
)

func TestService_Create(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()
	start := time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)

	tests := []struct {
		name    string
		nr      attendance.NewRecord
		want    attendance.Detail
		wantErr bool
	}{
		{name: "absence", nr: attendance.NewRecord{Type: "absence", Hours: 2}, want: attendance.Absence{Hours: 2}},
		{name: "lateness", nr: attendance.NewRecord{Type: " LATENESS ", Minutes: 5}, want: attendance.Lateness{Minutes: 5}},
		{name: "consigne", nr: attendance.NewRecord{Type: "consigne", Hours: 1, Task: " lines "}, want: attendance.Consigne{Hours: 1, Task: "lines"}},
		{name: "chatter", nr: attendance.NewRecord{Type: "chatter", Count: 2}, want: attendance.Chatter{Count: 2}},
		{
			name: "exclusion",
			nr:   attendance.NewRecord{Type: "exclusion", StartDate: &start, EndDate: &end, Reason: "fight"},
			want: attendance.Exclusion{StartDate: start, EndDate: end, Reason: "fight"},
		},
		{name: "exclusion without period", nr: attendance.NewRecord{Type: "exclusion"}, wantErr: true},
		{name: "chatter without count", nr: attendance.NewRecord{Type: "chatter"}, wantErr: true},
		{name: "negative hours", nr: attendance.NewRecord{Type: "absence", Hours: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nr := tt.nr
			nr.StudentID = testutil.AliceID
			nr.TermID = testutil.Month1ID
			nr.Date = start
			nr.CreatedBy = "supervisor-1"

			rec, err := svcs.Attendance.Create(ctx, nr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Detail)

			got, err := svcs.Attendance.Get(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, got.ID)
			assert.Equal(t, tt.want, got.Detail)
		})
	}

	_, err := svcs.Attendance.Create(ctx, attendance.NewRecord{
		StudentID: testutil.AliceID, TermID: "nope", Type: "chatter", Count: 1, Date: start, CreatedBy: "s",
	})
	assert.True(t, core.IsNotFound(err))
}

func TestService_Justify(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()
	nj := attendance.NewJustification{Reason: "sick", CreatedBy: "parent-1"}

	absence := testutil.CreateRecord(t, svcs.Attendance, attendance.NewRecord{
		StudentID: testutil.AliceID, TermID: testutil.Month1ID, Type: attendance.KindAbsence, Hours: 4,
	})
	for _, kind := range []attendance.NewRecord{
		{StudentID: testutil.AliceID, TermID: testutil.Month1ID, Type: attendance.KindConsigne, Hours: 1},
		{StudentID: testutil.AliceID, TermID: testutil.Month1ID, Type: attendance.KindExclusion,
			StartDate: timePtr(time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC)), EndDate: timePtr(time.Date(2023, 10, 3, 0, 0, 0, 0, time.UTC))},
	} {
		rec := testutil.CreateRecord(t, svcs.Attendance, kind)
		_, err := svcs.Attendance.Justify(ctx, rec.ID, nj)
		assert.Equal(t, attendance.ErrNotJustifiable, err, string(kind.Type))
	}

	_, err := svcs.Attendance.Justify(ctx, "nope", nj)
	assert.Equal(t, attendance.ErrRecordNotFound, errors.Cause(err))

	j, err := svcs.Attendance.Justify(ctx, absence.ID, nj)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPending, j.Status)
	assert.Equal(t, []string{}, j.Attachments)

	_, err = svcs.Attendance.Justify(ctx, absence.ID, nj)
	assert.Equal(t, attendance.ErrAlreadyJustified, err)

	// pending justifications do not count
	summaries, err := svcs.Attendance.Summaries(ctx, testutil.ClassroomID, []string{testutil.Month1ID})
	require.NoError(t, err)
	assert.Equal(t, 4, summaries[testutil.AliceID].UnjustifiedAbsenceHours)

	t.Run("review", func(t *testing.T) {
		_, err := svcs.Attendance.UpdateStatus(ctx, j.ID, attendance.StatusUpdate{Status: attendance.StatusPending, ReviewedBy: "p"})
		assert.Error(t, err)

		approved, err := svcs.Attendance.UpdateStatus(ctx, j.ID, attendance.StatusUpdate{Status: "Approved", ReviewedBy: "principal", Comment: "ok"})
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusApproved, approved.Status)
		assert.Equal(t, "principal", approved.ReviewedBy)
		assert.NotNil(t, approved.ReviewedAt)
		assert.Equal(t, "ok", approved.Comment)

		for _, next := range []attendance.Status{attendance.StatusApproved, attendance.StatusRejected} {
			_, err = svcs.Attendance.UpdateStatus(ctx, j.ID, attendance.StatusUpdate{Status: next, ReviewedBy: "principal"})
			assert.Equal(t, attendance.ErrInvalidTransition, err)
		}

		_, err = svcs.Attendance.UpdateStatus(ctx, "nope", attendance.StatusUpdate{Status: attendance.StatusRejected, ReviewedBy: "principal"})
		assert.Equal(t, attendance.ErrJustificationNotFound, errors.Cause(err))

		summaries, err := svcs.Attendance.Summaries(ctx, testutil.ClassroomID, []string{testutil.Month1ID})
		require.NoError(t, err)
		assert.Equal(t, 4, summaries[testutil.AliceID].JustifiedAbsenceHours)
		assert.Equal(t, 0, summaries[testutil.AliceID].UnjustifiedAbsenceHours)
	})
}

func TestService_QueryByClassroom(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()
	testutil.CreateRecord(t, svcs.Attendance, attendance.NewRecord{
		StudentID: testutil.BrunoID, TermID: testutil.Month1ID, Type: attendance.KindChatter, Count: 1,
	})
	testutil.CreateRecord(t, svcs.Attendance, attendance.NewRecord{
		StudentID: "student-eric", TermID: testutil.Month1ID, Type: attendance.KindChatter, Count: 1,
	})

	records, err := svcs.Attendance.QueryByClassroom(ctx, testutil.ClassroomID, nil, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, testutil.BrunoID, records[0].StudentID)

	_, err = svcs.Attendance.QueryByClassroom(ctx, testutil.ClassroomID, nil, "nap")
	assert.IsType(t, &core.ValidationError{}, err)

	_, err = svcs.Attendance.QueryByClassroom(ctx, "nope", nil, "")
	assert.True(t, core.IsNotFound(err))

	require.NoError(t, svcs.Attendance.Delete(ctx, records[0].ID))
	assert.Equal(t, attendance.ErrRecordNotFound, errors.Cause(svcs.Attendance.Delete(ctx, records[0].ID)))
}

// slowReadRepo widens the window between reading a justification and storing its review.
type slowReadRepo struct {
	attendance.Repository
}

func (repo slowReadRepo) GetJustification(ctx context.Context, id string) (attendance.Justification, error) {
	time.Sleep(5 * time.Millisecond)
	return repo.Repository.GetJustification(ctx, id)
}

func TestService_UpdateStatus_concurrentReviews(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()
	svc := attendance.NewService(slowReadRepo{svcs.AttendanceRepo}, svcs.SchoolRepo, svcs.Validate, svcs.Logger)

	for i := 0; i < 10; i++ {
		rec := testutil.CreateRecord(t, svcs.Attendance, attendance.NewRecord{
			StudentID: testutil.AliceID, TermID: testutil.Month1ID, Type: attendance.KindAbsence, Hours: 1,
		})
		j, err := svc.Justify(ctx, rec.ID, attendance.NewJustification{Reason: "sick", CreatedBy: "parent-1"})
		require.NoError(t, err)

		reviews := []attendance.Status{attendance.StatusApproved, attendance.StatusRejected}
		errs := make([]error, len(reviews))
		var wg sync.WaitGroup
		for k, status := range reviews {
			wg.Add(1)
			go func(k int, status attendance.Status) {
				defer wg.Done()
				_, errs[k] = svc.UpdateStatus(ctx, j.ID, attendance.StatusUpdate{Status: status, ReviewedBy: "principal"})
			}(k, status)
		}
		wg.Wait()

		var winner attendance.Status
		failed := 0
		for k, err := range errs {
			if err == nil {
				winner = reviews[k]
				continue
			}
			failed++
			assert.Equal(t, attendance.ErrInvalidTransition, err)
		}
		require.Equal(t, 1, failed, "exactly one review must win")

		stored, err := svcs.AttendanceRepo.GetJustification(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, winner, stored.Status)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
