package attendance

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/internflow/internflow-backend-go/internal/domain/attendance"
	allowanceService "github.com/internflow/internflow-backend-go/internal/service/allowance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	entries []attendance.Attendance
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, att)
	return att, nil
}

func (r *fakeAttendanceRepo) GetByInternAndDate(ctx context.Context, internID string, date time.Time) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.InternID == internID && e.Date.Equal(date) {
			return e, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *fakeAttendanceRepo) SetClockOut(ctx context.Context, id string, clockOut time.Time) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == id {
			r.entries[i].ClockOut = &clockOut
			return r.entries[i], nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *fakeAttendanceRepo) ListByInternAndRange(ctx context.Context, internID string, from, to time.Time) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, e := range r.entries {
		if e.InternID == internID && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// recompute call recorded by the stub allowance service.
type recomputeCall struct {
	internID string
	monthKey string
}

type stubAllowanceService struct {
	mu    sync.Mutex
	calls []recomputeCall
}

func (s *stubAllowanceService) RecomputeClaim(ctx context.Context, internID, monthKey string) (allowance.RecomputeResultResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recomputeCall{internID, monthKey})
	return allowance.RecomputeResultResponse{Success: true}, nil
}

func (s *stubAllowanceService) SyncWallet(ctx context.Context, internID string) (allowance.SyncResultResponse, error) {
	return allowance.SyncResultResponse{Success: true}, nil
}

func (s *stubAllowanceService) GetWallet(ctx context.Context, internID string) (allowance.WalletResponse, error) {
	return allowance.WalletResponse{}, allowance.ErrWalletNotFound
}

func (s *stubAllowanceService) ListClaims(ctx context.Context, internID string) ([]allowance.ClaimResponse, error) {
	return nil, nil
}

func (s *stubAllowanceService) GetClaim(ctx context.Context, internID, monthKey string) (allowance.ClaimResponse, error) {
	return allowance.ClaimResponse{}, allowance.ErrClaimNotFound
}

func (s *stubAllowanceService) AdjustClaim(ctx context.Context, req allowance.AdjustClaimRequest) (allowance.ClaimResponse, error) {
	return allowance.ClaimResponse{}, allowance.ErrClaimNotFound
}

func newTestAttendanceService() (attendance.AttendanceService, *fakeAttendanceRepo, *stubAllowanceService) {
	repo := &fakeAttendanceRepo{}
	stub := &stubAllowanceService{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trigger := allowanceService.NewTrigger(stub, logger)
	return NewAttendanceService(repo, trigger), repo, stub
}

func TestClockIn_CreatesEntry(t *testing.T) {
	svc, repo, _ := newTestAttendanceService()

	at := "2024-11-05T09:00:00Z"
	resp, err := svc.ClockIn(context.Background(), attendance.ClockInRequest{
		InternID: "intern-1",
		Date:     "2024-11-05",
		WorkMode: "wfo",
		At:       &at,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "intern-1", resp.InternID)
	assert.Equal(t, "wfo", resp.WorkMode)
	require.NotNil(t, resp.ClockIn)
	assert.Nil(t, resp.ClockOut)
	assert.Len(t, repo.entries, 1)
}

func TestClockIn_DuplicateRejected(t *testing.T) {
	svc, _, _ := newTestAttendanceService()

	req := attendance.ClockInRequest{InternID: "intern-1", Date: "2024-11-05", WorkMode: "wfo"}
	_, err := svc.ClockIn(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.ClockIn(context.Background(), req)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
}

func TestClockIn_InvalidRequest(t *testing.T) {
	svc, _, _ := newTestAttendanceService()

	_, err := svc.ClockIn(context.Background(), attendance.ClockInRequest{
		InternID: "intern-1",
		Date:     "05-11-2024",
		WorkMode: "office",
	})
	assert.Error(t, err)
}

func TestClockOut_CompletesDayAndTriggersRecompute(t *testing.T) {
	svc, _, stub := newTestAttendanceService()

	in := "2024-11-05T09:00:00Z"
	_, err := svc.ClockIn(context.Background(), attendance.ClockInRequest{
		InternID: "intern-1", Date: "2024-11-05", WorkMode: "wfo", At: &in,
	})
	require.NoError(t, err)

	out := "2024-11-05T18:00:00Z"
	resp, err := svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		InternID: "intern-1", Date: "2024-11-05", At: &out,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ClockOut)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, "intern-1", stub.calls[0].internID)
	assert.Equal(t, "2024-11", stub.calls[0].monthKey)
}

func TestClockOut_WithoutClockIn(t *testing.T) {
	svc, _, stub := newTestAttendanceService()

	_, err := svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		InternID: "intern-1", Date: "2024-11-05",
	})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	assert.Empty(t, stub.calls)
}

func TestClockOut_RepeatRejected(t *testing.T) {
	svc, _, stub := newTestAttendanceService()

	_, err := svc.ClockIn(context.Background(), attendance.ClockInRequest{
		InternID: "intern-1", Date: "2024-11-05", WorkMode: "wfh",
	})
	require.NoError(t, err)

	_, err = svc.ClockOut(context.Background(), attendance.ClockOutRequest{InternID: "intern-1", Date: "2024-11-05"})
	require.NoError(t, err)

	_, err = svc.ClockOut(context.Background(), attendance.ClockOutRequest{InternID: "intern-1", Date: "2024-11-05"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)

	// The pipeline fired exactly once for the single completion.
	assert.Len(t, stub.calls, 1)
}

func TestListMyAttendance_FiltersRange(t *testing.T) {
	svc, repo, _ := newTestAttendanceService()

	for _, d := range []string{"2024-11-04", "2024-11-05", "2024-12-01"} {
		date, _ := time.Parse("2006-01-02", d)
		in := date.Add(9 * time.Hour)
		repo.entries = append(repo.entries, attendance.Attendance{
			ID: d, InternID: "intern-1", Date: date, WorkMode: attendance.WorkModeOffice, ClockIn: &in,
		})
	}

	list, err := svc.ListMyAttendance(context.Background(), "intern-1", "2024-11-01", "2024-11-30")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.ListMyAttendance(context.Background(), "intern-1", "bad", "2024-11-30")
	assert.Error(t, err)
}
