package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Shivappapadennavar/attend/internal/authz"
	"github.com/Shivappapadennavar/attend/internal/dto"
	"github.com/Shivappapadennavar/attend/internal/model"
	"github.com/Shivappapadennavar/attend/internal/repository"
	pkgerrors "github.com/Shivappapadennavar/attend/pkg/errors"
)

// ── 请假模块业务错误 ──

var (
	ErrLeaveNotFound  = errors.New("请假申请不存在")
	ErrInvalidRange   = errors.New("请假日期范围无效")
	ErrEmptyReason    = errors.New("请假事由不能为空")
	ErrAlreadyDecided = errors.New("该申请已审批，不能重复操作")
)

// LeaveService 请假业务接口
//
// 状态机：pending → approved | rejected，终态后不再有任何转移，
// 申请内容（日期、事由）创建后不可修改。
// 审批是恰好一次的：并发重复裁决只有一方成功，另一方收到 ErrAlreadyDecided。
type LeaveService interface {
	Submit(ctx context.Context, caller authz.Identity, req *dto.SubmitLeaveRequest) (*dto.LeaveResponse, error)
	Approve(ctx context.Context, caller authz.Identity, leaveID string) (*dto.LeaveResponse, error)
	Reject(ctx context.Context, caller authz.Identity, leaveID string) (*dto.LeaveResponse, error)
	// ListPending 待审批队列，按提交时间升序（先到先审）
	ListPending(ctx context.Context, caller authz.Identity) ([]dto.LeaveResponse, error)
	// ListForUser 某用户的申请历史，按开始日期降序
	ListForUser(ctx context.Context, caller authz.Identity, userID string) ([]dto.LeaveResponse, error)
}

type leaveService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time // 可注入，测试用
}

// NewLeaveService 创建 LeaveService 实例
func NewLeaveService(repo *repository.Repository, logger *zap.Logger) LeaveService {
	return &leaveService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Submit ──────────────────────

func (s *leaveService) Submit(ctx context.Context, caller authz.Identity, req *dto.SubmitLeaveRequest) (*dto.LeaveResponse, error) {
	if err := authz.Can(caller, authz.ActionSubmitLeave, authz.OwnedBy(caller.UserID)); err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrInvalidRange
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, ErrInvalidRange
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	if isBlank(req.Reason) {
		return nil, ErrEmptyReason
	}

	leave := &model.LeaveRequest{
		UserID:    caller.UserID,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		Status:    model.LeaveStatusPending,
	}
	leave.CreatedBy = &caller.UserID
	leave.UpdatedBy = &caller.UserID

	if err := s.repo.Leave.Create(ctx, leave); err != nil {
		s.logger.Error("创建请假申请失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("请假申请已提交",
		zap.String("leave_id", leave.LeaveID),
		zap.String("user_id", caller.UserID),
	)
	return s.toResponse(ctx, leave), nil
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *leaveService) Approve(ctx context.Context, caller authz.Identity, leaveID string) (*dto.LeaveResponse, error) {
	return s.decide(ctx, caller, leaveID, model.LeaveStatusApproved)
}

func (s *leaveService) Reject(ctx context.Context, caller authz.Identity, leaveID string) (*dto.LeaveResponse, error) {
	return s.decide(ctx, caller, leaveID, model.LeaveStatusRejected)
}

// decide 审批的公共路径。
// 预检查只为尽早返回友好错误；真正的恰好一次语义由
// Repository 的版本化 UPDATE（version + status='pending' 守卫）保证。
func (s *leaveService) decide(ctx context.Context, caller authz.Identity, leaveID, status string) (*dto.LeaveResponse, error) {
	if err := authz.Can(caller, authz.ActionDecideLeave, authz.AnyResource()); err != nil {
		return nil, err
	}

	leave, err := s.repo.Leave.GetByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("查询请假申请失败", zap.String("leave_id", leaveID), zap.Error(err))
		return nil, err
	}

	if leave.IsDecided() {
		return nil, ErrAlreadyDecided
	}

	decidedAt := s.now()
	leave.Status = status
	leave.DecidedBy = &caller.UserID
	leave.DecidedAt = &decidedAt
	leave.UpdatedBy = &caller.UserID

	if err := s.repo.Leave.Decide(ctx, leave); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			// 并发重复裁决的落败方
			return nil, ErrAlreadyDecided
		}
		s.logger.Error("写入审批结果失败", zap.String("leave_id", leaveID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("请假申请已审批",
		zap.String("leave_id", leaveID),
		zap.String("status", status),
		zap.String("decided_by", caller.UserID),
	)
	return s.toResponse(ctx, leave), nil
}

// ────────────────────── ListPending ──────────────────────

func (s *leaveService) ListPending(ctx context.Context, caller authz.Identity) ([]dto.LeaveResponse, error) {
	if err := authz.Can(caller, authz.ActionListPendingLeave, authz.AnyResource()); err != nil {
		return nil, err
	}

	leaves, err := s.repo.Leave.ListPending(ctx)
	if err != nil {
		s.logger.Error("查询待审批申请失败", zap.Error(err))
		return nil, err
	}

	return s.toResponses(ctx, leaves), nil
}

// ────────────────────── ListForUser ──────────────────────

func (s *leaveService) ListForUser(ctx context.Context, caller authz.Identity, userID string) ([]dto.LeaveResponse, error) {
	if err := authz.Can(caller, authz.ActionReadLeave, authz.OwnedBy(userID)); err != nil {
		return nil, err
	}

	leaves, err := s.repo.Leave.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询请假历史失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return s.toResponses(ctx, leaves), nil
}

// ── 内部辅助方法 ──

func (s *leaveService) toResponse(ctx context.Context, leave *model.LeaveRequest) *dto.LeaveResponse {
	resp := &dto.LeaveResponse{
		ID:          leave.LeaveID,
		UserID:      leave.UserID,
		StartDate:   leave.StartDate.Format("2006-01-02"),
		EndDate:     leave.EndDate.Format("2006-01-02"),
		Reason:      leave.Reason,
		Status:      leave.Status,
		DecidedBy:   leave.DecidedBy,
		SubmittedAt: leave.CreatedAt.Format(time.RFC3339),
	}
	if leave.DecidedAt != nil {
		v := leave.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}

	if leave.User != nil {
		resp.UserName = leave.User.Name
	} else if user, err := s.repo.User.GetByID(ctx, leave.UserID); err == nil {
		resp.UserName = user.Name
	} else {
		// 申请人解析失败是数据完整性故障，不影响返回但必须留痕
		s.logger.Error("解析申请人失败",
			zap.String("leave_id", leave.LeaveID),
			zap.String("user_id", leave.UserID),
			zap.Error(err),
		)
	}
	return resp
}

func (s *leaveService) toResponses(ctx context.Context, leaves []model.LeaveRequest) []dto.LeaveResponse {
	result := make([]dto.LeaveResponse, 0, len(leaves))
	for i := range leaves {
		result = append(result, *s.toResponse(ctx, &leaves[i]))
	}
	return result
}

// isBlank 全空白字符串视为空
func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
