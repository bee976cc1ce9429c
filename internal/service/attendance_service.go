package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Shivappapadennavar/attend/config"
	"github.com/Shivappapadennavar/attend/internal/authz"
	"github.com/Shivappapadennavar/attend/internal/dto"
	"github.com/Shivappapadennavar/attend/internal/model"
	"github.com/Shivappapadennavar/attend/internal/repository"
	pkgerrors "github.com/Shivappapadennavar/attend/pkg/errors"
)

// ── 考勤模块业务错误 ──

var (
	ErrAlreadyCheckedIn  = errors.New("今天已签到，不能重复签到")
	ErrNotCheckedIn      = errors.New("今天尚未签到")
	ErrAlreadyCheckedOut = errors.New("今天已签退")
	ErrInvalidDate       = errors.New("日期格式无效")
)

// AttendanceService 考勤业务接口
//
// 每个 (user_id, 日期) 的状态机：无记录 → 已签到 → 已签退（当日终态）。
// "今天"一律由服务端时钟按配置时区判定，客户端时间只在读路径上出现。
type AttendanceService interface {
	CheckIn(ctx context.Context, caller authz.Identity) (*dto.AttendanceResponse, error)
	CheckOut(ctx context.Context, caller authz.Identity) (*dto.AttendanceResponse, error)
	// GetRecord 查询某用户某天的记录；date 为空表示今天。
	// 当天无记录返回 status=absent 的响应，而不是 404，
	// 以便与"已签到未签退"区分
	GetRecord(ctx context.Context, caller authz.Identity, userID, date string) (*dto.AttendanceResponse, error)
	// ListForUser 某用户的考勤历史，按日期降序
	ListForUser(ctx context.Context, caller authz.Identity, userID string) ([]dto.AttendanceResponse, error)
	// ListAll 管理员跨用户列表，按日期降序、姓名升序
	ListAll(ctx context.Context, caller authz.Identity, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time // 可注入，测试用
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(cfg *config.AttendanceConfig, repo *repository.Repository, logger *zap.Logger) (AttendanceService, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("加载考勤时区失败: %w", err)
	}
	return &attendanceService{
		repo:   repo,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}, nil
}

// ────────────────────── CheckIn ──────────────────────

func (s *attendanceService) CheckIn(ctx context.Context, caller authz.Identity) (*dto.AttendanceResponse, error) {
	if err := authz.Can(caller, authz.ActionCheckIn, authz.OwnedBy(caller.UserID)); err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	today := dateOnly(now)

	// 先查后写只拦截普通重复提交；并发竞争由唯一索引兜底
	existing, err := s.repo.Attendance.GetByUserAndDate(ctx, caller.UserID, today)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询当日考勤失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		// 记录只在签到时创建，存在即意味着已签到
		return nil, ErrAlreadyCheckedIn
	}

	checkIn := now
	rec := &model.AttendanceRecord{
		UserID:    caller.UserID,
		WorkDate:  today,
		CheckInAt: &checkIn,
	}
	rec.CreatedBy = &caller.UserID
	rec.UpdatedBy = &caller.UserID

	if err := s.repo.Attendance.Create(ctx, rec); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发重复签到的落败方
			return nil, ErrAlreadyCheckedIn
		}
		s.logger.Error("创建考勤记录失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("签到成功",
		zap.String("user_id", caller.UserID),
		zap.String("date", today.Format("2006-01-02")),
	)
	return s.toResponse(rec), nil
}

// ────────────────────── CheckOut ──────────────────────

func (s *attendanceService) CheckOut(ctx context.Context, caller authz.Identity) (*dto.AttendanceResponse, error) {
	if err := authz.Can(caller, authz.ActionCheckOut, authz.OwnedBy(caller.UserID)); err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	today := dateOnly(now)

	rec, err := s.repo.Attendance.GetByUserAndDate(ctx, caller.UserID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotCheckedIn
		}
		s.logger.Error("查询当日考勤失败", zap.Error(err))
		return nil, err
	}

	if rec.CheckInAt == nil {
		return nil, ErrNotCheckedIn
	}
	if rec.CheckOutAt != nil {
		return nil, ErrAlreadyCheckedOut
	}

	checkOut := now
	rec.CheckOutAt = &checkOut
	rec.UpdatedBy = &caller.UserID

	if err := s.repo.Attendance.SetCheckOut(ctx, rec); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			// 并发重复签退的落败方
			return nil, ErrAlreadyCheckedOut
		}
		s.logger.Error("写入签退时间失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("签退成功",
		zap.String("user_id", caller.UserID),
		zap.String("date", today.Format("2006-01-02")),
	)
	return s.toResponse(rec), nil
}

// ────────────────────── GetRecord ──────────────────────

func (s *attendanceService) GetRecord(ctx context.Context, caller authz.Identity, userID, date string) (*dto.AttendanceResponse, error) {
	if err := authz.Can(caller, authz.ActionReadAttendance, authz.OwnedBy(userID)); err != nil {
		return nil, err
	}

	day := dateOnly(s.now().In(s.loc))
	if date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, s.loc)
		if err != nil {
			return nil, ErrInvalidDate
		}
		day = parsed
	}

	rec, err := s.repo.Attendance.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 无记录 ≠ 错误：当天缺勤
			return &dto.AttendanceResponse{
				UserID: userID,
				Date:   day.Format("2006-01-02"),
				Status: dto.DayStatusAbsent,
			}, nil
		}
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, err
	}

	return s.toResponse(rec), nil
}

// ────────────────────── ListForUser ──────────────────────

func (s *attendanceService) ListForUser(ctx context.Context, caller authz.Identity, userID string) ([]dto.AttendanceResponse, error) {
	if err := authz.Can(caller, authz.ActionReadAttendance, authz.OwnedBy(userID)); err != nil {
		return nil, err
	}

	recs, err := s.repo.Attendance.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询考勤历史失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceResponse, 0, len(recs))
	for i := range recs {
		result = append(result, *s.toResponse(&recs[i]))
	}
	return result, nil
}

// ────────────────────── ListAll ──────────────────────

func (s *attendanceService) ListAll(ctx context.Context, caller authz.Identity, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error) {
	if err := authz.Can(caller, authz.ActionListAllAttendance, authz.AnyResource()); err != nil {
		return nil, err
	}

	filters, err := s.buildFilters(req)
	if err != nil {
		return nil, err
	}

	recs, err := s.repo.Attendance.ListAll(ctx, filters)
	if err != nil {
		s.logger.Error("查询考勤列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceResponse, 0, len(recs))
	for i := range recs {
		result = append(result, *s.toResponse(&recs[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *attendanceService) buildFilters(req *dto.AttendanceListRequest) (*repository.AttendanceListFilters, error) {
	filters := &repository.AttendanceListFilters{}
	if req == nil {
		return filters, nil
	}

	filters.UserID = req.UserID
	if req.FromDate != "" {
		from, err := time.ParseInLocation("2006-01-02", req.FromDate, s.loc)
		if err != nil {
			return nil, ErrInvalidDate
		}
		filters.From = &from
	}
	if req.ToDate != "" {
		to, err := time.ParseInLocation("2006-01-02", req.ToDate, s.loc)
		if err != nil {
			return nil, ErrInvalidDate
		}
		filters.To = &to
	}
	return filters, nil
}

func (s *attendanceService) toResponse(rec *model.AttendanceRecord) *dto.AttendanceResponse {
	resp := &dto.AttendanceResponse{
		ID:     rec.AttendanceID,
		UserID: rec.UserID,
		Date:   rec.WorkDate.Format("2006-01-02"),
		Status: dayStatus(rec),
	}
	if rec.User != nil {
		resp.UserName = rec.User.Name
		resp.Department = rec.User.Department
	}
	if rec.CheckInAt != nil {
		v := rec.CheckInAt.In(s.loc).Format(time.RFC3339)
		resp.CheckInAt = &v
	}
	if rec.CheckOutAt != nil {
		v := rec.CheckOutAt.In(s.loc).Format(time.RFC3339)
		resp.CheckOutAt = &v
	}
	return resp
}

// dayStatus 由时间戳派生单日状态
func dayStatus(rec *model.AttendanceRecord) string {
	switch {
	case rec.CheckInAt == nil:
		return dto.DayStatusAbsent
	case rec.CheckOutAt == nil:
		return dto.DayStatusCheckedIn
	default:
		return dto.DayStatusPresent
	}
}

// dateOnly 截断到日界（保留时区）
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
