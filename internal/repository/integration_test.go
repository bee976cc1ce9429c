//go:build integration

package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Shivappapadennavar/attend/internal/model"
	"github.com/Shivappapadennavar/attend/pkg/database"
	pkgerrors "github.com/Shivappapadennavar/attend/pkg/errors"
)

// 真实 Postgres 上验证并发写路径的数据库侧语义：
// 唯一索引、版本化 UPDATE 的守卫条件。
//
// 运行方式:
//   TEST_DATABASE_DSN="host=localhost user=postgres dbname=attend_test sslmode=disable" \
//     go test -tags=integration ./internal/repository/

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("未设置 TEST_DATABASE_DSN，跳过集成测试")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 sql.DB 失败: %v", err)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		t.Fatalf("执行迁移失败: %v", err)
	}

	// 每个用例在干净的表上运行
	db.Exec("TRUNCATE attendance_records, leave_requests, users CASCADE")
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         model.RoleEmployee,
		Department:   "Engineering",
	}
	if err := NewUserRepo(db).Create(context.Background(), user); err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return user
}

func TestAttendanceRepo_DuplicateDay(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttendanceRepo(db)
	ctx := context.Background()

	user := createTestUser(t, db, "John Doe", "john@example.com")
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := day.Add(9 * time.Hour)

	first := &model.AttendanceRecord{UserID: user.UserID, WorkDate: day, CheckInAt: &now}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("首条记录应创建成功: %v", err)
	}

	// (user_id, work_date) 唯一索引由 TranslateError 翻译为 ErrDuplicatedKey
	dup := &model.AttendanceRecord{UserID: user.UserID, WorkDate: day, CheckInAt: &now}
	if err := repo.Create(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("同日重复创建应返回 ErrDuplicatedKey，实际为 %v", err)
	}
}

func TestAttendanceRepo_SetCheckOut_StaleVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttendanceRepo(db)
	ctx := context.Background()

	user := createTestUser(t, db, "John Doe", "john@example.com")
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	checkIn := day.Add(9 * time.Hour)

	rec := &model.AttendanceRecord{UserID: user.UserID, WorkDate: day, CheckInAt: &checkIn}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("创建记录失败: %v", err)
	}

	// 两个并发事务各自读到 version=1 的快照
	winner, err := repo.GetByUserAndDate(ctx, user.UserID, day)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	loser, err := repo.GetByUserAndDate(ctx, user.UserID, day)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}

	checkOut := day.Add(17 * time.Hour)
	winner.CheckOutAt = &checkOut
	if err := repo.SetCheckOut(ctx, winner); err != nil {
		t.Fatalf("先到方签退应成功: %v", err)
	}

	loser.CheckOutAt = &checkOut
	if err := repo.SetCheckOut(ctx, loser); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("落败方应返回 ErrOptimisticLock，实际为 %v", err)
	}
}

func TestLeaveRepo_Decide_ExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaveRepo(db)
	ctx := context.Background()

	user := createTestUser(t, db, "John Doe", "john@example.com")
	admin := createTestUser(t, db, "Admin User", "admin@example.com")

	leave := &model.LeaveRequest{
		UserID:    user.UserID,
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Reason:    "家事",
		Status:    model.LeaveStatusPending,
	}
	if err := repo.Create(ctx, leave); err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	approve, err := repo.GetByID(ctx, leave.LeaveID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	reject, err := repo.GetByID(ctx, leave.LeaveID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}

	decidedAt := time.Now()
	approve.Status = model.LeaveStatusApproved
	approve.DecidedBy = &admin.UserID
	approve.DecidedAt = &decidedAt
	if err := repo.Decide(ctx, approve); err != nil {
		t.Fatalf("首次裁决应成功: %v", err)
	}

	// 同一快照上的第二次裁决被 version + pending 守卫拒绝
	reject.Status = model.LeaveStatusRejected
	reject.DecidedBy = &admin.UserID
	reject.DecidedAt = &decidedAt
	if err := repo.Decide(ctx, reject); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("第二次裁决应返回 ErrOptimisticLock，实际为 %v", err)
	}

	stored, err := repo.GetByID(ctx, leave.LeaveID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if stored.Status != model.LeaveStatusApproved {
		t.Errorf("终态应为首次裁决的结果 approved，实际为 %s", stored.Status)
	}
	if stored.Version != 2 {
		t.Errorf("版本应递增到 2，实际为 %d", stored.Version)
	}
}
