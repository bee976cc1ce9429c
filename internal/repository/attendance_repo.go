package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Shivappapadennavar/attend/internal/model"
	pkgerrors "github.com/Shivappapadennavar/attend/pkg/errors"
)

// AttendanceListFilters 管理员考勤列表过滤条件
type AttendanceListFilters struct {
	UserID string
	From   *time.Time
	To     *time.Time
}

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	// Create 创建当日记录；(user_id, work_date) 唯一索引冲突时
	// 返回 gorm.ErrDuplicatedKey，由 Service 翻译为重复签到
	Create(ctx context.Context, rec *model.AttendanceRecord) error
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.AttendanceRecord, error)
	// SetCheckOut 写入签退时间。带乐观锁与"未签退"双重守卫，
	// 并发重复签退的落败方收到 pkg/errors.ErrOptimisticLock
	SetCheckOut(ctx context.Context, rec *model.AttendanceRecord) error
	// ListByUser 返回某用户全部考勤，按日期降序
	ListByUser(ctx context.Context, userID string) ([]model.AttendanceRecord, error)
	// ListAll 跨用户列表，按日期降序、姓名升序（稳定展示顺序）
	ListAll(ctx context.Context, filters *AttendanceListFilters) ([]model.AttendanceRecord, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *attendanceRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date = ?", userID, date.Format("2006-01-02")).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepo) SetCheckOut(ctx context.Context, rec *model.AttendanceRecord) error {
	oldVersion := rec.Version
	result := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("attendance_id = ? AND version = ? AND check_in_at IS NOT NULL AND check_out_at IS NULL",
			rec.AttendanceID, oldVersion).
		Updates(map[string]interface{}{
			"check_out_at": rec.CheckOutAt,
			"updated_by":   rec.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	rec.Version = oldVersion + 1
	return nil
}

func (r *attendanceRepo) ListByUser(ctx context.Context, userID string) ([]model.AttendanceRecord, error) {
	var recs []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("work_date DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *attendanceRepo) ListAll(ctx context.Context, filters *AttendanceListFilters) ([]model.AttendanceRecord, error) {
	db := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Joins("JOIN users ON users.user_id = attendance_records.user_id")

	if filters != nil {
		if filters.UserID != "" {
			db = db.Where("attendance_records.user_id = ?", filters.UserID)
		}
		if filters.From != nil {
			db = db.Where("attendance_records.work_date >= ?", filters.From.Format("2006-01-02"))
		}
		if filters.To != nil {
			db = db.Where("attendance_records.work_date <= ?", filters.To.Format("2006-01-02"))
		}
	}

	var recs []model.AttendanceRecord
	err := db.
		Preload("User").
		Order("attendance_records.work_date DESC, users.name ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
