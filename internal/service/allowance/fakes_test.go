package allowance

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/internflow/internflow-backend-go/internal/domain/attendance"
	"github.com/internflow/internflow-backend-go/internal/domain/intern"
	"github.com/internflow/internflow-backend-go/internal/domain/leave"
)

// In-memory repository fakes implementing the same merge and lease
// semantics as the PostgreSQL implementations, so the engine can be
// exercised without a database.

type claimKey struct {
	internID string
	monthKey string
}

type fakeClaimRepo struct {
	mu     sync.Mutex
	claims map[claimKey]allowance.Claim
}

func newFakeClaimRepo() *fakeClaimRepo {
	return &fakeClaimRepo{claims: make(map[claimKey]allowance.Claim)}
}

func (r *fakeClaimRepo) GetByInternAndMonth(ctx context.Context, internID, monthKey string) (allowance.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[claimKey{internID, monthKey}]
	if !ok {
		return allowance.Claim{}, allowance.ErrClaimNotFound
	}
	return c, nil
}

func (r *fakeClaimRepo) ListByIntern(ctx context.Context, internID string) ([]allowance.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []allowance.Claim
	for k, c := range r.claims {
		if k.internID == internID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthKey < out[j].MonthKey })
	return out, nil
}

func (r *fakeClaimRepo) Upsert(ctx context.Context, write allowance.ClaimWrite) (allowance.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := claimKey{write.InternID, write.MonthKey}
	now := time.Now()

	c, ok := r.claims[key]
	if !ok {
		c = allowance.Claim{
			InternID:  write.InternID,
			MonthKey:  write.MonthKey,
			Status:    allowance.ClaimStatusPending,
			CreatedAt: now,
		}
	}

	c.CalculatedAmount = write.CalculatedAmount
	if write.Amount != nil {
		c.Amount = *write.Amount
	}
	c.Breakdown = write.Breakdown
	c.PlannedPayoutDate = write.PlannedPayoutDate
	c.IsPayoutLocked = write.IsPayoutLocked
	c.LockReason = write.LockReason
	c.UpdatedAt = now

	r.claims[key] = c
	return c, nil
}

func (r *fakeClaimRepo) ApplyAdjustment(ctx context.Context, internID, monthKey string, adj allowance.ClaimAdjustment) (allowance.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := claimKey{internID, monthKey}
	c, ok := r.claims[key]
	if !ok {
		return allowance.Claim{}, allowance.ErrClaimNotFound
	}

	if adj.SupervisorAdjustedAmount != nil {
		c.SupervisorAdjustedAmount = adj.SupervisorAdjustedAmount
	}
	if adj.AdminAdjustedAmount != nil {
		c.AdminAdjustedAmount = adj.AdminAdjustedAmount
	}
	if adj.Amount != nil {
		c.Amount = *adj.Amount
	}
	if adj.Status != nil {
		c.Status = *adj.Status
	}
	if adj.PaymentDate != nil {
		c.PaymentDate = adj.PaymentDate
	}
	if adj.PaidAt != nil {
		c.PaidAt = adj.PaidAt
	}
	c.UpdatedAt = time.Now()

	r.claims[key] = c
	return c, nil
}

func (r *fakeClaimRepo) put(c allowance.Claim) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims[claimKey{c.InternID, c.MonthKey}] = c
}

type fakeWalletRepo struct {
	mu       sync.Mutex
	wallets  map[string]allowance.Wallet
	months   map[string][]allowance.WalletMonth
	replaces int
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{
		wallets: make(map[string]allowance.Wallet),
		months:  make(map[string][]allowance.WalletMonth),
	}
}

func (r *fakeWalletRepo) GetByIntern(ctx context.Context, internID string) (allowance.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[internID]
	if !ok {
		return allowance.Wallet{}, allowance.ErrWalletNotFound
	}
	return w, nil
}

func (r *fakeWalletRepo) ListMonths(ctx context.Context, internID string) ([]allowance.WalletMonth, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.months[internID], nil
}

func (r *fakeWalletRepo) Replace(ctx context.Context, wallet allowance.Wallet, months []allowance.WalletMonth) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[wallet.InternID] = wallet
	r.months[wallet.InternID] = months
	r.replaces++
	return nil
}

type fakeSyncLockRepo struct {
	mu    sync.Mutex
	locks map[string]allowance.SyncLock
}

func newFakeSyncLockRepo() *fakeSyncLockRepo {
	return &fakeSyncLockRepo{locks: make(map[string]allowance.SyncLock)}
}

func (r *fakeSyncLockRepo) Acquire(ctx context.Context, internID, startedBy string, now time.Time, staleness time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	running := allowance.SyncLock{
		InternID:  internID,
		Status:    allowance.SyncLockRunning,
		StartedAt: now,
		StartedBy: startedBy,
	}

	// Same two-step handshake as the store: create-if-absent wins the
	// bootstrap, otherwise the existing lease decides.
	l, ok := r.locks[internID]
	if !ok {
		r.locks[internID] = running
		return nil
	}
	if l.Status == allowance.SyncLockRunning && now.Sub(l.StartedAt) <= staleness {
		return allowance.ErrSyncAlreadyRunning
	}

	r.locks[internID] = running
	return nil
}

func (r *fakeSyncLockRepo) Finish(ctx context.Context, internID string, finishedAt time.Time, errMessage *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.locks[internID]
	if errMessage != nil {
		l.Status = allowance.SyncLockError
		l.ErrorMessage = errMessage
	} else {
		l.Status = allowance.SyncLockDone
		l.ErrorMessage = nil
	}
	l.FinishedAt = &finishedAt
	r.locks[internID] = l
	return nil
}

func (r *fakeSyncLockRepo) Get(ctx context.Context, internID string) (allowance.SyncLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[internID]
	if !ok {
		return allowance.SyncLock{}, allowance.ErrSyncLockNotFound
	}
	return l, nil
}

// backdate rewinds a running lease's start so staleness tests need no
// clock injection.
func (r *fakeSyncLockRepo) backdate(internID string, by time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.locks[internID]
	l.StartedAt = l.StartedAt.Add(-by)
	r.locks[internID] = l
}

type fakeRulesRepo struct {
	rules      allowance.Rules
	rulesErr   error
	payPeriods map[string]allowance.PayPeriod
}

func (r *fakeRulesRepo) GetRules(ctx context.Context) (allowance.Rules, error) {
	if r.rulesErr != nil {
		return allowance.Rules{}, r.rulesErr
	}
	return r.rules, nil
}

func (r *fakeRulesRepo) GetPayPeriod(ctx context.Context, monthKey string) (allowance.PayPeriod, error) {
	if p, ok := r.payPeriods[monthKey]; ok {
		return p, nil
	}
	return allowance.PayPeriod{MonthKey: monthKey}, nil
}

type fakeInternRepo struct {
	interns map[string]intern.Intern
}

func (r *fakeInternRepo) GetByID(ctx context.Context, id string) (intern.Intern, error) {
	p, ok := r.interns[id]
	if !ok {
		return intern.Intern{}, intern.ErrInternNotFound
	}
	return p, nil
}

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

type fakeLeaveRepo struct {
	requests []leave.LeaveRequest
}

func (r *fakeLeaveRepo) ListApprovedOverlapping(ctx context.Context, internID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, l := range r.requests {
		if l.InternID != internID || l.Status != leave.LeaveStatusApproved {
			continue
		}
		if l.StartDate.After(to) || l.EndDate.Before(from) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

type fakeCorrectionRepo struct {
	pending map[string]int
}

func (r *fakeCorrectionRepo) CountPendingByIntern(ctx context.Context, internID string) (int, error) {
	return r.pending[internID], nil
}

// testEnv bundles the fakes and the service wired over them.
type testEnv struct {
	claims      *fakeClaimRepo
	wallets     *fakeWalletRepo
	locks       *fakeSyncLockRepo
	rules       *fakeRulesRepo
	interns     *fakeInternRepo
	attendances *fakeAttendanceRepo
	leaves      *fakeLeaveRepo
	corrections *fakeCorrectionRepo
	service     allowance.AllowanceService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		claims:      newFakeClaimRepo(),
		wallets:     newFakeWalletRepo(),
		locks:       newFakeSyncLockRepo(),
		rules:       &fakeRulesRepo{payPeriods: make(map[string]allowance.PayPeriod)},
		interns:     &fakeInternRepo{interns: make(map[string]intern.Intern)},
		attendances: &fakeAttendanceRepo{},
		leaves:      &fakeLeaveRepo{},
		corrections: &fakeCorrectionRepo{pending: make(map[string]int)},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.service = NewAllowanceService(
		env.claims,
		env.wallets,
		env.locks,
		env.rules,
		env.interns,
		env.attendances,
		env.leaves,
		env.corrections,
		DefaultLockStaleness,
		logger,
	)
	return env
}
