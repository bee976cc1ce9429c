package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Shivappapadennavar/attend/internal/model"
	pkgerrors "github.com/Shivappapadennavar/attend/pkg/errors"
)

// LeaveRepository 请假数据访问接口
type LeaveRepository interface {
	Create(ctx context.Context, leave *model.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*model.LeaveRequest, error)
	// Decide 写入审批终态。UPDATE 同时校验版本与 pending 状态，
	// 并发重复裁决的落败方收到 pkg/errors.ErrOptimisticLock，
	// 保证每条申请恰好被裁决一次
	Decide(ctx context.Context, leave *model.LeaveRequest) error
	// ListPending 返回全部待审批申请，按提交时间升序（先到先审）
	ListPending(ctx context.Context) ([]model.LeaveRequest, error)
	// ListByUser 返回某用户全部申请，按开始日期降序
	ListByUser(ctx context.Context, userID string) ([]model.LeaveRequest, error)
	// ListOverlapping 查询与给定区间有交集的申请。
	// 当前核心不做重叠校验（显式非目标），接口为将来的规则预留
	ListOverlapping(ctx context.Context, userID string, start, end time.Time) ([]model.LeaveRequest, error)
}

// leaveRepo LeaveRepository 的 GORM 实现
type leaveRepo struct {
	db *gorm.DB
}

// NewLeaveRepo 创建 LeaveRepository 实例
func NewLeaveRepo(db *gorm.DB) LeaveRepository {
	return &leaveRepo{db: db}
}

func (r *leaveRepo) Create(ctx context.Context, leave *model.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(leave).Error
}

func (r *leaveRepo) GetByID(ctx context.Context, id string) (*model.LeaveRequest, error) {
	var leave model.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("leave_id = ?", id).
		First(&leave).Error
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *leaveRepo) Decide(ctx context.Context, leave *model.LeaveRequest) error {
	oldVersion := leave.Version
	result := r.db.WithContext(ctx).
		Model(&model.LeaveRequest{}).
		Where("leave_id = ? AND version = ? AND status = ?",
			leave.LeaveID, oldVersion, model.LeaveStatusPending).
		Updates(map[string]interface{}{
			"status":     leave.Status,
			"decided_by": leave.DecidedBy,
			"decided_at": leave.DecidedAt,
			"updated_by": leave.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	leave.Version = oldVersion + 1
	return nil
}

func (r *leaveRepo) ListPending(ctx context.Context) ([]model.LeaveRequest, error) {
	var leaves []model.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", model.LeaveStatusPending).
		Order("created_at ASC").
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

func (r *leaveRepo) ListByUser(ctx context.Context, userID string) ([]model.LeaveRequest, error) {
	var leaves []model.LeaveRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

func (r *leaveRepo) ListOverlapping(ctx context.Context, userID string, start, end time.Time) ([]model.LeaveRequest, error) {
	var leaves []model.LeaveRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_date <= ? AND end_date >= ?",
			userID, end.Format("2006-01-02"), start.Format("2006-01-02")).
		Order("start_date ASC").
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, nil
}
