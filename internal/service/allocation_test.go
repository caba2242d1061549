package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HustleHeroes/config"
	"HustleHeroes/internal/model"
	"HustleHeroes/internal/model/dto"
	"HustleHeroes/internal/repository"
	"HustleHeroes/pkg/errors"
	"HustleHeroes/pkg/qrcode"
)

// 内存版 Store：整库一把锁模拟开班实例事务，回调在副本上执行，
// 成功才提交回主存，与行锁事务的回滚语义一致。

type occKey struct {
	shiftID int64
	date    string
}

type fakeStore struct {
	mu      sync.Mutex
	workers map[int64]*model.Worker
	shifts  map[int64]*model.Shift
	jobs    map[int64]*model.Job
	occs    map[occKey]*model.ShiftOccurrence
	apps    map[int64]*model.Application // key = public id
	events  []*model.AttendanceEvent
	qrCodes []*model.ShiftQRCode
	nextRow int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workers: make(map[int64]*model.Worker),
		shifts:  make(map[int64]*model.Shift),
		jobs:    make(map[int64]*model.Job),
		occs:    make(map[occKey]*model.ShiftOccurrence),
		apps:    make(map[int64]*model.Application),
	}
}

func cloneApp(app *model.Application) *model.Application {
	c := *app
	return &c
}

func (f *fakeStore) GetWorker(ctx context.Context, id int64) (*model.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[id]
	if !ok {
		return nil, errors.WorkerNotFound
	}
	c := *w
	return &c, nil
}

func (f *fakeStore) GetShift(ctx context.Context, id int64) (*model.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shifts[id]
	if !ok {
		return nil, errors.ShiftNotFound
	}
	c := *s
	return &c, nil
}

func (f *fakeStore) GetJob(ctx context.Context, id int64) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, errors.JobNotFound
	}
	c := *j
	return &c, nil
}

func (f *fakeStore) GetOccurrence(ctx context.Context, shiftID int64, date string) (*model.ShiftOccurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	occ, ok := f.occs[occKey{shiftID, date}]
	if !ok {
		return nil, errors.OccurrenceNotFound
	}
	c := *occ
	return &c, nil
}

func (f *fakeStore) GetApplicationByPublicID(ctx context.Context, publicID int64) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[publicID]
	if !ok {
		return nil, errors.ApplicationNotFound
	}
	return cloneApp(app), nil
}

func (f *fakeStore) ListWorkerApplications(ctx context.Context, workerID int64, status string, limit, offset int) ([]*model.Application, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var apps []*model.Application
	for _, app := range f.apps {
		if app.WorkerID != workerID {
			continue
		}
		if status != "" && string(app.Status) != status {
			continue
		}
		apps = append(apps, cloneApp(app))
	}
	return apps, int64(len(apps)), nil
}

func (f *fakeStore) ListActiveJobs(ctx context.Context, limit, offset int) ([]*model.Job, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []*model.Job
	for _, j := range f.jobs {
		if j.Status == model.JobStatusActive {
			c := *j
			jobs = append(jobs, &c)
		}
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ID < jobs[k].ID })
	return jobs, int64(len(jobs)), nil
}

func (f *fakeStore) ListJobShifts(ctx context.Context, jobID int64) ([]*model.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var shifts []*model.Shift
	for _, s := range f.shifts {
		if s.JobID == jobID {
			c := *s
			shifts = append(shifts, &c)
		}
	}
	sort.Slice(shifts, func(i, k int) bool { return shifts[i].StartClock < shifts[k].StartClock })
	return shifts, nil
}

func (f *fakeStore) ListOpenOccurrences(ctx context.Context, jobID int64, fromDate string) ([]*model.ShiftOccurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var occs []*model.ShiftOccurrence
	for _, o := range f.occs {
		if o.JobID == jobID && o.Date >= fromDate {
			c := *o
			occs = append(occs, &c)
		}
	}
	sort.Slice(occs, func(i, k int) bool {
		if occs[i].Date != occs[k].Date {
			return occs[i].Date < occs[k].Date
		}
		return occs[i].ShiftID < occs[k].ShiftID
	})
	return occs, nil
}

func (f *fakeStore) SaveQRCode(ctx context.Context, qr *model.ShiftQRCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextRow++
	qr.ID = f.nextRow
	f.qrCodes = append(f.qrCodes, qr)
	return nil
}

func (f *fakeStore) InOccurrence(ctx context.Context, shiftID int64, date string, fn func(tx repository.OccurrenceTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	occ, ok := f.occs[occKey{shiftID, date}]
	if !ok {
		return errors.OccurrenceNotFound
	}

	occCopy := *occ
	tx := &fakeTx{
		store:        f,
		occ:          &occCopy,
		staged:       make(map[int64]*model.Application),
		stagedBumps:  make(map[int64]int),
		stagedEvents: nil,
	}

	if err := fn(tx); err != nil {
		return err
	}

	// 提交
	*occ = occCopy
	for id, app := range tx.staged {
		f.apps[id] = app
	}
	for workerID, n := range tx.stagedBumps {
		if w, ok := f.workers[workerID]; ok {
			w.CancellationCount += n
		}
	}
	f.events = append(f.events, tx.stagedEvents...)
	return nil
}

func (f *fakeStore) NoShowCandidates(ctx context.Context, startedBefore time.Time) ([]*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Application
	for _, app := range f.apps {
		if app.Status != model.ApplicationStatusUpcoming || app.ClockInTime != nil || app.IsStandby {
			continue
		}
		occ, ok := f.occs[occKey{app.ShiftID, app.Date}]
		if !ok || !occ.StartAt.Before(startedBefore) {
			continue
		}
		out = append(out, cloneApp(app))
	}
	return out, nil
}

type fakeTx struct {
	store        *fakeStore
	occ          *model.ShiftOccurrence
	staged       map[int64]*model.Application
	stagedBumps  map[int64]int
	stagedEvents []*model.AttendanceEvent
}

func (t *fakeTx) Occurrence() *model.ShiftOccurrence { return t.occ }

func (t *fakeTx) FindApplication(publicID int64) (*model.Application, error) {
	if app, ok := t.staged[publicID]; ok {
		return app, nil
	}
	app, ok := t.store.apps[publicID]
	if !ok {
		return nil, errors.ApplicationNotFound
	}
	c := cloneApp(app)
	t.staged[publicID] = c
	return c, nil
}

func (t *fakeTx) view() []*model.Application {
	var apps []*model.Application
	seen := make(map[int64]bool)
	for id, app := range t.staged {
		apps = append(apps, app)
		seen[id] = true
	}
	for id, app := range t.store.apps {
		if !seen[id] {
			apps = append(apps, app)
		}
	}
	return apps
}

func (t *fakeTx) ActiveApplication(workerID int64) (*model.Application, error) {
	for _, app := range t.view() {
		if app.WorkerID == workerID && app.ShiftID == t.occ.ShiftID && app.Date == t.occ.Date &&
			app.Status == model.ApplicationStatusUpcoming && app.AppliedStatus == model.AppliedStatusApplied {
			return cloneApp(app), nil
		}
	}
	return nil, nil
}

func (t *fakeTx) OldestWaitingStandby() (*model.Application, error) {
	var oldest *model.Application
	for _, app := range t.view() {
		if app.ShiftID != t.occ.ShiftID || app.Date != t.occ.Date {
			continue
		}
		if app.Status != model.ApplicationStatusUpcoming || !app.IsStandby {
			continue
		}
		if oldest == nil || app.AppliedAt.Before(oldest.AppliedAt) ||
			(app.AppliedAt.Equal(oldest.AppliedAt) && app.ID < oldest.ID) {
			oldest = app
		}
	}
	if oldest == nil {
		return nil, nil
	}
	if staged, ok := t.staged[oldest.PublicID]; ok {
		return staged, nil
	}
	c := cloneApp(oldest)
	t.staged[oldest.PublicID] = c
	return c, nil
}

func (t *fakeTx) CreateApplication(app *model.Application) error {
	t.store.nextRow++
	app.ID = t.store.nextRow
	t.staged[app.PublicID] = app
	return nil
}

func (t *fakeTx) SaveApplication(app *model.Application) error {
	t.staged[app.PublicID] = app
	return nil
}

func (t *fakeTx) SaveOccurrence(occ *model.ShiftOccurrence) error { return nil }

func (t *fakeTx) AppendAttendance(ev *model.AttendanceEvent) error {
	t.stagedEvents = append(t.stagedEvents, ev)
	return nil
}

func (t *fakeTx) BumpWorkerCancellation(workerID int64) (int, error) {
	w, ok := t.store.workers[workerID]
	if !ok {
		return 0, errors.WorkerNotFound
	}
	t.stagedBumps[workerID]++
	return w.CancellationCount + t.stagedBumps[workerID], nil
}

type fakePublisher struct {
	mu            sync.Mutex
	events        []*model.ApplicationEventMessage
	cancellations []*model.WorkerCancellationMessage
	noShowChecks  []*model.NoShowCheckMessage
	checkDelays   []time.Duration
}

func (p *fakePublisher) PublishApplicationEvent(ctx context.Context, msg *model.ApplicationEventMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg)
	return nil
}

func (p *fakePublisher) PublishWorkerCancellation(ctx context.Context, msg *model.WorkerCancellationMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancellations = append(p.cancellations, msg)
	return nil
}

func (p *fakePublisher) PublishNoShowCheck(ctx context.Context, msg *model.NoShowCheckMessage, delay time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.noShowChecks = append(p.noShowChecks, msg)
	p.checkDelays = append(p.checkDelays, delay)
	return nil
}

func (p *fakePublisher) eventTypes() []model.ApplicationEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []model.ApplicationEventType
	for _, e := range p.events {
		types = append(types, e.EventType)
	}
	return types
}

// ========== 测试装配 ==========

var (
	testStart = time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	siteLat   = 1.2830
	siteLng   = 103.8600
)

type fixture struct {
	svc   *AllocationService
	store *fakeStore
	pub   *fakePublisher
	now   time.Time // svc.now 返回的当前时间，按需改写
	nowMu sync.Mutex
}

func (fx *fixture) setNow(t time.Time) {
	fx.nowMu.Lock()
	fx.now = t
	fx.nowMu.Unlock()
}

// newFixture 预置一个 job/shift 和指定容量的开班实例，班次 testStart 开班
func newFixture(t *testing.T, vacancy, standbyVacancy int) *fixture {
	t.Helper()

	store := newFakeStore()
	pub := &fakePublisher{}

	store.jobs[10] = &model.Job{
		BaseModel: model.BaseModel{ID: 10},
		Latitude:  siteLat,
		Longitude: siteLng,
	}
	store.shifts[20] = &model.Shift{
		BaseModel: model.BaseModel{ID: 20},
		JobID:     10,
	}
	store.occs[occKey{20, "2026-09-10"}] = &model.ShiftOccurrence{
		BaseModel:      model.BaseModel{ID: 1},
		ShiftID:        20,
		JobID:          10,
		Date:           "2026-09-10",
		StartAt:        testStart,
		EndAt:          testStart.Add(8 * time.Hour),
		Vacancy:        vacancy,
		StandbyVacancy: standbyVacancy,
	}

	fx := &fixture{store: store, pub: pub, now: testStart.Add(-72 * time.Hour)}

	svc := NewAllocationService(store, pub)
	var idCtr int64 = 5000
	svc.newID = func() (int64, error) { return atomic.AddInt64(&idCtr, 1), nil }
	svc.now = func() time.Time {
		fx.nowMu.Lock()
		defer fx.nowMu.Unlock()
		return fx.now
	}
	fx.svc = svc
	return fx
}

func (fx *fixture) addWorker(id int64) {
	fx.store.workers[id] = &model.Worker{
		BaseModel:        model.BaseModel{ID: id},
		PublicID:         id,
		ProfileCompleted: true,
		Status:           model.WorkerStatusActive,
	}
}

func (fx *fixture) apply(t *testing.T, workerID int64, standby bool) *dto.ApplyData {
	t.Helper()
	data, err := fx.svc.Apply(context.Background(), workerID, &dto.ApplyRequest{
		ShiftID:   20,
		Date:      "2026-09-10",
		IsStandby: standby,
	})
	require.NoError(t, err)
	return data
}

func (fx *fixture) occurrence() *model.ShiftOccurrence {
	return fx.store.occs[occKey{20, "2026-09-10"}]
}

// ========== 报名 ==========

func TestApplySeatAssignment(t *testing.T) {
	fx := newFixture(t, 1, 1)
	fx.addWorker(1)
	fx.addWorker(2)
	fx.addWorker(3)

	// 第一个人拿正选
	data := fx.apply(t, 1, false)
	assert.Equal(t, "primary", data.SeatKind)
	assert.Zero(t, data.StandbyBonus)

	// 正选满员，第二个人自动回落候补
	data = fx.apply(t, 2, false)
	assert.Equal(t, "standby", data.SeatKind)
	assert.NotZero(t, data.StandbyBonus)

	// 两类席位都满
	_, err := fx.svc.Apply(context.Background(), 3, &dto.ApplyRequest{ShiftID: 20, Date: "2026-09-10"})
	assert.Equal(t, errors.NoVacancy, err)

	occ := fx.occurrence()
	assert.Equal(t, 1, occ.FilledPrimary)
	assert.Equal(t, 1, occ.FilledStandby)
}

func TestApplyExplicitStandbyRequiresFullPrimary(t *testing.T) {
	fx := newFixture(t, 2, 1)
	fx.addWorker(1)

	// 正选还有空位时，显式候补请求不成立
	_, err := fx.svc.Apply(context.Background(), 1, &dto.ApplyRequest{
		ShiftID: 20, Date: "2026-09-10", IsStandby: true,
	})
	assert.Equal(t, errors.NoVacancy, err)
	assert.Equal(t, 0, fx.occurrence().FilledStandby)
}

func TestApplyGuards(t *testing.T) {
	fx := newFixture(t, 2, 1)
	fx.addWorker(1)

	t.Run("duplicate application", func(t *testing.T) {
		fx.apply(t, 1, false)
		_, err := fx.svc.Apply(context.Background(), 1, &dto.ApplyRequest{ShiftID: 20, Date: "2026-09-10"})
		assert.Equal(t, errors.DuplicateApplication, err)
	})

	t.Run("profile incomplete", func(t *testing.T) {
		fx.store.workers[7] = &model.Worker{PublicID: 7, Status: model.WorkerStatusActive}
		_, err := fx.svc.Apply(context.Background(), 7, &dto.ApplyRequest{ShiftID: 20, Date: "2026-09-10"})
		assert.Equal(t, errors.ProfileIncomplete, err)
	})

	t.Run("unknown worker", func(t *testing.T) {
		_, err := fx.svc.Apply(context.Background(), 404, &dto.ApplyRequest{ShiftID: 20, Date: "2026-09-10"})
		assert.Equal(t, errors.WorkerNotFound, err)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := fx.svc.Apply(context.Background(), 1, &dto.ApplyRequest{ShiftID: 20, Date: "10/09/2026"})
		assert.Equal(t, errors.InvalidRequest, err)
	})

	t.Run("shift already started", func(t *testing.T) {
		fx.addWorker(8)
		fx.setNow(testStart.Add(time.Minute))
		_, err := fx.svc.Apply(context.Background(), 8, &dto.ApplyRequest{ShiftID: 20, Date: "2026-09-10"})
		assert.Equal(t, errors.ShiftAlreadyStarted, err)
	})
}

// ========== 取消与候补转正 ==========

func TestCancelPenaltyAndPromotion(t *testing.T) {
	fx := newFixture(t, 1, 1)
	fx.addWorker(1)
	fx.addWorker(2)

	a := fx.apply(t, 1, false)
	fx.apply(t, 2, false) // 候补

	// 开班前 10 小时取消，落在 >6 小时档
	fx.setNow(testStart.Add(-10 * time.Hour))
	data, err := fx.svc.Cancel(context.Background(), 1, mustID(t, a.ApplicationID), &dto.CancelRequest{Reason: "personal"})
	require.NoError(t, err)
	assert.Equal(t, 15, data.Penalty)
	assert.Equal(t, "> 6 Hours", data.PenaltyLabel)

	// 候补在同一事务内转正
	var promoted *model.Application
	for _, app := range fx.store.apps {
		if app.WorkerID == 2 {
			promoted = app
		}
	}
	require.NotNil(t, promoted)
	assert.False(t, promoted.IsStandby)
	assert.Equal(t, model.SeatKindPrimary, promoted.SeatKind)
	assert.NotNil(t, promoted.ActivatedAt)

	occ := fx.occurrence()
	assert.Equal(t, 1, occ.FilledPrimary)
	assert.Equal(t, 0, occ.FilledStandby)

	// 取消次数只累计，不放大罚金
	assert.Equal(t, 1, fx.store.workers[1].CancellationCount)

	types := fx.pub.eventTypes()
	assert.Contains(t, types, model.ApplicationEventCancelled)
	assert.Contains(t, types, model.ApplicationEventPromoted)
	require.Len(t, fx.pub.cancellations, 1)
	assert.Equal(t, 1, fx.pub.cancellations[0].CancellationCount)
}

func TestCancelPromotesEarliestStandby(t *testing.T) {
	fx := newFixture(t, 1, 2)
	fx.addWorker(1)
	fx.addWorker(2)
	fx.addWorker(3)

	a := fx.apply(t, 1, false)

	// 两个候补，先来后到
	fx.setNow(testStart.Add(-71 * time.Hour))
	fx.apply(t, 2, true)
	fx.setNow(testStart.Add(-70 * time.Hour))
	fx.apply(t, 3, true)

	fx.setNow(testStart.Add(-30 * time.Hour))
	_, err := fx.svc.Cancel(context.Background(), 1, mustID(t, a.ApplicationID), &dto.CancelRequest{Reason: "personal"})
	require.NoError(t, err)

	byWorker := make(map[int64]*model.Application)
	for _, app := range fx.store.apps {
		byWorker[app.WorkerID] = app
	}

	// 先报的候补转正，后报的原地等待
	require.NotNil(t, byWorker[2])
	assert.Equal(t, model.SeatKindPrimary, byWorker[2].SeatKind)
	assert.False(t, byWorker[2].IsStandby)
	assert.NotNil(t, byWorker[2].ActivatedAt)

	require.NotNil(t, byWorker[3])
	assert.Equal(t, model.SeatKindStandby, byWorker[3].SeatKind)
	assert.True(t, byWorker[3].IsStandby)
	assert.Nil(t, byWorker[3].ActivatedAt)

	occ := fx.occurrence()
	assert.Equal(t, 1, occ.FilledPrimary)
	assert.Equal(t, 1, occ.FilledStandby)
}

func TestCancelPenaltyTiers(t *testing.T) {
	cases := []struct {
		name    string
		before  time.Duration
		penalty int
		label   string
	}{
		{"more than 48h", 49 * time.Hour, 0, "> 48 Hours (No Penalty)"},
		{"more than 24h", 30 * time.Hour, 5, "> 24 Hours"},
		{"more than 12h", 18 * time.Hour, 10, "> 12 Hours"},
		{"more than 6h", 10 * time.Hour, 15, "> 6 Hours"},
		{"less than 6h", time.Hour, 50, "< 6 Hours / No-show"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, 1, 0)
			fx.addWorker(1)
			a := fx.apply(t, 1, false)

			fx.setNow(testStart.Add(-tc.before))
			data, err := fx.svc.Cancel(context.Background(), 1, mustID(t, a.ApplicationID), &dto.CancelRequest{Reason: "personal"})
			require.NoError(t, err)
			assert.Equal(t, tc.penalty, data.Penalty)
			assert.Equal(t, tc.label, data.PenaltyLabel)
		})
	}
}

func TestCancelGuards(t *testing.T) {
	fx := newFixture(t, 1, 0)
	fx.addWorker(1)
	fx.addWorker(2)
	a := fx.apply(t, 1, false)
	id := mustID(t, a.ApplicationID)

	t.Run("invalid reason", func(t *testing.T) {
		_, err := fx.svc.Cancel(context.Background(), 1, id, &dto.CancelRequest{Reason: "bored"})
		assert.Equal(t, errors.InvalidCancelReason, err)
	})

	t.Run("not the owner", func(t *testing.T) {
		_, err := fx.svc.Cancel(context.Background(), 2, id, &dto.CancelRequest{Reason: "personal"})
		assert.Equal(t, errors.ApplicationNotFound, err)
	})

	t.Run("second cancel is rejected", func(t *testing.T) {
		fx.setNow(testStart.Add(-30 * time.Hour))
		_, err := fx.svc.Cancel(context.Background(), 1, id, &dto.CancelRequest{Reason: "personal"})
		require.NoError(t, err)

		fx.setNow(testStart.Add(-2 * time.Hour))
		_, err = fx.svc.Cancel(context.Background(), 1, id, &dto.CancelRequest{Reason: "personal"})
		assert.Equal(t, errors.AlreadyTerminal, err)

		// 罚金保持第一次取消的档位
		assert.Equal(t, 5, fx.store.apps[id].Penalty)
		// 座位只释放一次
		assert.Equal(t, 0, fx.occurrence().FilledPrimary)
	})
}

// ========== 打卡与完成 ==========

func TestClockInOutAndComplete(t *testing.T) {
	fx := newFixture(t, 1, 0)
	fx.addWorker(1)
	a := fx.apply(t, 1, false)
	id := mustID(t, a.ApplicationID)

	token, err := qrcode.Issue(10, 20, "2026-09-10", time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	fx.setNow(testStart.Add(-5 * time.Minute))
	in, err := fx.svc.ClockIn(context.Background(), 1, id, &dto.ClockInRequest{
		QRToken:   token,
		Latitude:  siteLat,
		Longitude: siteLng,
	})
	require.NoError(t, err)
	assert.False(t, in.IsLate)

	// 未下班不能完成
	_, err = fx.svc.Complete(context.Background(), 1, id)
	assert.Equal(t, errors.NotUpcoming, err)

	fx.setNow(testStart.Add(8 * time.Hour))
	out, err := fx.svc.ClockOut(context.Background(), 1, id)
	require.NoError(t, err)
	assert.False(t, out.IsEarlyLeave)

	done, err := fx.svc.Complete(context.Background(), 1, id)
	require.NoError(t, err)
	assert.Zero(t, done.StandbyBonus)

	app := fx.store.apps[id]
	assert.Equal(t, model.ApplicationStatusCompleted, app.Status)
	// 完成不回退名额，已完成的座位计入上座率
	assert.Equal(t, 1, fx.occurrence().FilledPrimary)
	// 考勤流水两条
	assert.Len(t, fx.store.events, 2)
}

func TestPromotedStandbyGetsBonusOnComplete(t *testing.T) {
	fx := newFixture(t, 1, 1)
	fx.addWorker(1)
	fx.addWorker(2)
	a := fx.apply(t, 1, false)
	b := fx.apply(t, 2, false)
	bID := mustID(t, b.ApplicationID)

	fx.setNow(testStart.Add(-20 * time.Hour))
	_, err := fx.svc.Cancel(context.Background(), 1, mustID(t, a.ApplicationID), &dto.CancelRequest{Reason: "transport"})
	require.NoError(t, err)

	token, err := qrcode.Issue(10, 20, "2026-09-10", time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	fx.setNow(testStart)
	_, err = fx.svc.ClockIn(context.Background(), 2, bID, &dto.ClockInRequest{QRToken: token, Latitude: siteLat, Longitude: siteLng})
	require.NoError(t, err)

	fx.setNow(testStart.Add(8 * time.Hour))
	_, err = fx.svc.ClockOut(context.Background(), 2, bID)
	require.NoError(t, err)

	done, err := fx.svc.Complete(context.Background(), 2, bID)
	require.NoError(t, err)
	assert.NotZero(t, done.StandbyBonus)
}

func TestStandbyCannotClockInBeforePromotion(t *testing.T) {
	fx := newFixture(t, 1, 1)
	fx.addWorker(1)
	fx.addWorker(2)
	fx.apply(t, 1, false)
	b := fx.apply(t, 2, false)

	token, err := qrcode.Issue(10, 20, "2026-09-10", time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	fx.setNow(testStart)
	_, err = fx.svc.ClockIn(context.Background(), 2, mustID(t, b.ApplicationID), &dto.ClockInRequest{
		QRToken: token, Latitude: siteLat, Longitude: siteLng,
	})
	assert.Equal(t, errors.NotApplied, err)
}

// ========== 并发 ==========

func TestConcurrentApplyNoOversell(t *testing.T) {
	const workers = 20
	fx := newFixture(t, 2, 1)
	for i := int64(1); i <= workers; i++ {
		fx.addWorker(i)
	}

	var primary, standby, rejected int64
	var wg sync.WaitGroup
	for i := int64(1); i <= workers; i++ {
		wg.Add(1)
		go func(workerID int64) {
			defer wg.Done()
			data, err := fx.svc.Apply(context.Background(), workerID, &dto.ApplyRequest{ShiftID: 20, Date: "2026-09-10"})
			switch {
			case err == errors.NoVacancy:
				atomic.AddInt64(&rejected, 1)
			case err == nil && data.SeatKind == "primary":
				atomic.AddInt64(&primary, 1)
			case err == nil && data.SeatKind == "standby":
				atomic.AddInt64(&standby, 1)
			default:
				t.Errorf("unexpected result: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(2), primary)
	assert.Equal(t, int64(1), standby)
	assert.Equal(t, int64(workers-3), rejected)

	occ := fx.occurrence()
	assert.Equal(t, 2, occ.FilledPrimary)
	assert.Equal(t, 1, occ.FilledStandby)
}

// ========== 爽约扫描 ==========

func TestSweepNoShows(t *testing.T) {
	fx := newFixture(t, 2, 1)
	fx.addWorker(1)
	fx.addWorker(2)
	fx.addWorker(3)

	a := fx.apply(t, 1, false) // 会被标记爽约
	b := fx.apply(t, 2, false) // 已打卡，不标记
	fx.apply(t, 3, false)      // 候补未转正，不标记

	token, err := qrcode.Issue(10, 20, "2026-09-10", time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	fx.setNow(testStart)
	_, err = fx.svc.ClockIn(context.Background(), 2, mustID(t, b.ApplicationID), &dto.ClockInRequest{
		QRToken: token, Latitude: siteLat, Longitude: siteLng,
	})
	require.NoError(t, err)

	// 开班已超过宽限期
	fx.setNow(testStart.Add(2 * time.Hour))
	marked, err := fx.svc.SweepNoShows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	app := fx.store.apps[mustID(t, a.ApplicationID)]
	assert.Equal(t, model.ApplicationStatusNoShow, app.Status)
	assert.Equal(t, 50, app.Penalty)
	assert.Equal(t, "< 6 Hours / No-show", app.PenaltyLabel)

	assert.Contains(t, fx.pub.eventTypes(), model.ApplicationEventNoShow)

	// 再跑一轮不会重复标记
	marked, err = fx.svc.SweepNoShows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
}

func TestApplySchedulesNoShowCheck(t *testing.T) {
	fx := newFixture(t, 1, 1)
	fx.addWorker(1)
	fx.addWorker(2)

	grace := time.Duration(config.Cfg.NoShowGraceMinutes) * time.Minute
	due := testStart.Add(grace)

	a := fx.apply(t, 1, false)
	require.Len(t, fx.pub.noShowChecks, 1)
	check := fx.pub.noShowChecks[0]
	assert.Equal(t, mustID(t, a.ApplicationID), check.ApplicationID)
	assert.Equal(t, due.Format(time.RFC3339), check.ScheduledFor)
	assert.Equal(t, due.Sub(testStart.Add(-72*time.Hour)), fx.pub.checkDelays[0])

	// 候补不会爽约，不挂检查
	fx.apply(t, 2, true)
	assert.Len(t, fx.pub.noShowChecks, 1)
}

func TestPromotionSchedulesNoShowCheck(t *testing.T) {
	fx := newFixture(t, 1, 1)
	fx.addWorker(1)
	fx.addWorker(2)

	a := fx.apply(t, 1, false)
	b := fx.apply(t, 2, true)
	require.Len(t, fx.pub.noShowChecks, 1)

	fx.setNow(testStart.Add(-30 * time.Hour))
	_, err := fx.svc.Cancel(context.Background(), 1, mustID(t, a.ApplicationID), &dto.CancelRequest{Reason: "personal"})
	require.NoError(t, err)

	// 转正的候补接管正选座位，同样挂上定点检查
	require.Len(t, fx.pub.noShowChecks, 2)
	assert.Equal(t, mustID(t, b.ApplicationID), fx.pub.noShowChecks[1].ApplicationID)
}

func TestCheckNoShow(t *testing.T) {
	fx := newFixture(t, 2, 0)
	fx.addWorker(1)
	fx.addWorker(2)
	a := fx.apply(t, 1, false)
	b := fx.apply(t, 2, false)
	id := mustID(t, a.ApplicationID)

	token, err := qrcode.Issue(10, 20, "2026-09-10", time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	fx.setNow(testStart)
	_, err = fx.svc.ClockIn(context.Background(), 2, mustID(t, b.ApplicationID), &dto.ClockInRequest{
		QRToken: token, Latitude: siteLat, Longitude: siteLng,
	})
	require.NoError(t, err)

	t.Run("before grace deadline is a no-op", func(t *testing.T) {
		fx.setNow(testStart.Add(5 * time.Minute))
		require.NoError(t, fx.svc.CheckNoShow(context.Background(), id))
		assert.Equal(t, model.ApplicationStatusUpcoming, fx.store.apps[id].Status)
	})

	t.Run("past grace deadline marks no-show", func(t *testing.T) {
		fx.setNow(testStart.Add(2 * time.Hour))
		require.NoError(t, fx.svc.CheckNoShow(context.Background(), id))

		app := fx.store.apps[id]
		assert.Equal(t, model.ApplicationStatusNoShow, app.Status)
		assert.Equal(t, 50, app.Penalty)
		assert.Contains(t, fx.pub.eventTypes(), model.ApplicationEventNoShow)
	})

	t.Run("repeat check is absorbed", func(t *testing.T) {
		require.NoError(t, fx.svc.CheckNoShow(context.Background(), id))
		assert.Equal(t, model.ApplicationStatusNoShow, fx.store.apps[id].Status)
	})

	t.Run("clocked-in worker is untouched", func(t *testing.T) {
		require.NoError(t, fx.svc.CheckNoShow(context.Background(), mustID(t, b.ApplicationID)))
		assert.Equal(t, model.ApplicationStatusUpcoming, fx.store.apps[mustID(t, b.ApplicationID)].Status)
	})

	t.Run("unknown application is skipped", func(t *testing.T) {
		require.NoError(t, fx.svc.CheckNoShow(context.Background(), 999999))
	})
}

func mustID(t *testing.T, s string) int64 {
	t.Helper()
	id, err := strconv.ParseInt(s, 10, 64)
	require.NoError(t, err)
	return id
}
