package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Shivappapadennavar/attend/internal/authz"
	"github.com/Shivappapadennavar/attend/internal/dto"
	"github.com/Shivappapadennavar/attend/internal/model"
	"github.com/Shivappapadennavar/attend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRecords    = errors.New("所选范围内没有考勤记录")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 考勤报表导出为 Excel (.xlsx)，管理员专用
//   - 已批准的请假导出为 iCalendar (.ics)，员工本人或管理员可用，
//     便于订阅到日历客户端
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportAttendance 导出考勤报表（过滤条件同管理员列表）
	ExportAttendance(ctx context.Context, caller authz.Identity, req *dto.AttendanceListRequest) (*bytes.Buffer, string, error)
	// ExportLeaveCalendar 导出某用户已批准请假的日历
	ExportLeaveCalendar(ctx context.Context, caller authz.Identity, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance — 导出考勤报表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：单 Sheet "考勤记录"，一行一条记录，
// 列：日期 / 姓名 / 部门 / 签到时间 / 签退时间 / 状态，
// 顺序与管理员列表一致（日期降序、姓名升序）。

func (s *exportService) ExportAttendance(ctx context.Context, caller authz.Identity, req *dto.AttendanceListRequest) (*bytes.Buffer, string, error) {
	if err := authz.Can(caller, authz.ActionExportAttendance, authz.AnyResource()); err != nil {
		return nil, "", err
	}

	filters := &repository.AttendanceListFilters{}
	if req != nil {
		filters.UserID = req.UserID
		if req.FromDate != "" {
			from, err := time.Parse("2006-01-02", req.FromDate)
			if err != nil {
				return nil, "", ErrInvalidDate
			}
			filters.From = &from
		}
		if req.ToDate != "" {
			to, err := time.Parse("2006-01-02", req.ToDate)
			if err != nil {
				return nil, "", ErrInvalidDate
			}
			filters.To = &to
		}
	}

	recs, err := s.repo.Attendance.ListAll(ctx, filters)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(recs) == 0 {
		return nil, "", ErrExportNoRecords
	}

	const sheet = "考勤记录"
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	header := []interface{}{"日期", "姓名", "部门", "签到时间", "签退时间", "状态"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", ErrExportGenerateFail
	}

	statusText := map[string]string{
		dto.DayStatusAbsent:    "缺勤",
		dto.DayStatusCheckedIn: "已签到",
		dto.DayStatusPresent:   "已签退",
	}

	for i := range recs {
		rec := &recs[i]

		name, dept := "", ""
		if rec.User != nil {
			name = rec.User.Name
			dept = rec.User.Department
		}

		row := []interface{}{
			rec.WorkDate.Format("2006-01-02"),
			name,
			dept,
			formatClock(rec.CheckInAt),
			formatClock(rec.CheckOutAt),
			statusText[dayStatus(rec)],
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", ErrExportGenerateFail
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportLeaveCalendar — 已批准请假导出为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每条已批准申请生成一个全天事件（DTEND 为 end_date 的次日，
// iCalendar 的结束日期是开区间）。pending / rejected 不出现在日历里。

func (s *exportService) ExportLeaveCalendar(ctx context.Context, caller authz.Identity, userID string) (*bytes.Buffer, string, error) {
	if err := authz.Can(caller, authz.ActionReadLeave, authz.OwnedBy(userID)); err != nil {
		return nil, "", err
	}

	leaves, err := s.repo.Leave.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询请假记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", err
	}

	userName := userID
	if user, err := s.repo.User.GetByID(ctx, userID); err == nil {
		userName = user.Name
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//attend//leave-calendar//CN")

	for i := range leaves {
		leave := &leaves[i]
		if leave.Status != model.LeaveStatusApproved {
			continue
		}

		event := cal.AddEvent(leave.LeaveID)
		event.SetDtStampTime(leave.CreatedAt)
		event.SetAllDayStartAt(leave.StartDate)
		event.SetAllDayEndAt(leave.EndDate.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("%s 请假", userName))
		event.SetDescription(leave.Reason)
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		s.logger.Error("生成 iCalendar 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("leave_%s.ics", userID)
	return &buf, filename, nil
}

// formatClock 时间戳转 HH:MM 展示；空值显示为 "-"
func formatClock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("15:04")
}
