package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Shivappapadennavar/attend/internal/model"
	"github.com/Shivappapadennavar/attend/internal/repository"
	pkgerrors "github.com/Shivappapadennavar/attend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// 内存版 Repository 实现，供 Service 层单元测试使用。
// 写路径的并发语义（唯一索引冲突、版本化 UPDATE）与真实
// Postgres 实现保持一致，以便并发用例在内存中复现。
// ═══════════════════════════════════════════════════════════

// ── mockUserRepo ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(ctx context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]model.User, 0, len(m.users))
	for _, user := range m.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── mockAttendanceRepo ──

type mockAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*model.AttendanceRecord // key: attendance_id
	users   *mockUserRepo                      // ListAll 关联用户名用
}

func newMockAttendanceRepo(users *mockUserRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{
		records: make(map[string]*model.AttendanceRecord),
		users:   users,
	}
}

func dayKey(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

func (m *mockAttendanceRepo) Create(ctx context.Context, rec *model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// (user_id, work_date) 唯一索引语义
	for _, existing := range m.records {
		if dayKey(existing.UserID, existing.WorkDate) == dayKey(rec.UserID, rec.WorkDate) {
			return gorm.ErrDuplicatedKey
		}
	}
	if rec.AttendanceID == "" {
		rec.AttendanceID = uuid.NewString()
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	cp := *rec
	m.records[rec.AttendanceID] = &cp
	return nil
}

func (m *mockAttendanceRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if dayKey(rec.UserID, rec.WorkDate) == dayKey(userID, date) {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) SetCheckOut(ctx context.Context, rec *model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[rec.AttendanceID]
	// 版本化 UPDATE 的 WHERE 守卫：版本匹配、已签到、未签退
	if !ok || stored.Version != rec.Version || stored.CheckInAt == nil || stored.CheckOutAt != nil {
		return pkgerrors.ErrOptimisticLock
	}
	stored.CheckOutAt = rec.CheckOutAt
	stored.UpdatedBy = rec.UpdatedBy
	stored.Version++
	rec.Version = stored.Version
	return nil
}

func (m *mockAttendanceRepo) ListByUser(ctx context.Context, userID string) ([]model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AttendanceRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			result = append(result, *rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WorkDate.After(result[j].WorkDate) })
	return result, nil
}

func (m *mockAttendanceRepo) ListAll(ctx context.Context, filters *repository.AttendanceListFilters) ([]model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AttendanceRecord
	for _, rec := range m.records {
		if filters != nil {
			if filters.UserID != "" && rec.UserID != filters.UserID {
				continue
			}
			if filters.From != nil && rec.WorkDate.Before(*filters.From) {
				continue
			}
			if filters.To != nil && rec.WorkDate.After(*filters.To) {
				continue
			}
		}
		cp := *rec
		if user, ok := m.users.users[cp.UserID]; ok {
			u := *user
			cp.User = &u
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].WorkDate.Equal(result[j].WorkDate) {
			return result[i].WorkDate.After(result[j].WorkDate)
		}
		ni, nj := "", ""
		if result[i].User != nil {
			ni = result[i].User.Name
		}
		if result[j].User != nil {
			nj = result[j].User.Name
		}
		return ni < nj
	})
	return result, nil
}

// ── mockLeaveRepo ──

type mockLeaveRepo struct {
	mu     sync.Mutex
	leaves map[string]*model.LeaveRequest // key: leave_id
	seq    int                            // created_at 单调递增用
}

func newMockLeaveRepo() *mockLeaveRepo {
	return &mockLeaveRepo{leaves: make(map[string]*model.LeaveRequest)}
}

func (m *mockLeaveRepo) Create(ctx context.Context, leave *model.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if leave.LeaveID == "" {
		leave.LeaveID = uuid.NewString()
	}
	if leave.Version == 0 {
		leave.Version = 1
	}
	if leave.CreatedAt.IsZero() {
		m.seq++
		leave.CreatedAt = time.Unix(int64(1700000000+m.seq), 0)
	}
	cp := *leave
	m.leaves[leave.LeaveID] = &cp
	return nil
}

func (m *mockLeaveRepo) GetByID(ctx context.Context, id string) (*model.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	leave, ok := m.leaves[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *leave
	return &cp, nil
}

func (m *mockLeaveRepo) Decide(ctx context.Context, leave *model.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.leaves[leave.LeaveID]
	// 版本化 UPDATE 的 WHERE 守卫：版本匹配且仍为 pending
	if !ok || stored.Version != leave.Version || stored.Status != model.LeaveStatusPending {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = leave.Status
	stored.DecidedBy = leave.DecidedBy
	stored.DecidedAt = leave.DecidedAt
	stored.UpdatedBy = leave.UpdatedBy
	stored.Version++
	leave.Version = stored.Version
	return nil
}

func (m *mockLeaveRepo) ListPending(ctx context.Context) ([]model.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.LeaveRequest
	for _, leave := range m.leaves {
		if leave.Status == model.LeaveStatusPending {
			result = append(result, *leave)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockLeaveRepo) ListByUser(ctx context.Context, userID string) ([]model.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.LeaveRequest
	for _, leave := range m.leaves {
		if leave.UserID == userID {
			result = append(result, *leave)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, nil
}

func (m *mockLeaveRepo) ListOverlapping(ctx context.Context, userID string, start, end time.Time) ([]model.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.LeaveRequest
	for _, leave := range m.leaves {
		if leave.UserID == userID && !leave.StartDate.After(end) && !leave.EndDate.Before(start) {
			result = append(result, *leave)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

// ── 聚合构造 ──

func newMockRepository() (*repository.Repository, *mockUserRepo, *mockAttendanceRepo, *mockLeaveRepo) {
	userRepo := newMockUserRepo()
	attRepo := newMockAttendanceRepo(userRepo)
	leaveRepo := newMockLeaveRepo()
	return &repository.Repository{
		User:       userRepo,
		Attendance: attRepo,
		Leave:      leaveRepo,
	}, userRepo, attRepo, leaveRepo
}
