package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Shivappapadennavar/attend/internal/authz"
	"github.com/Shivappapadennavar/attend/internal/dto"
)

func TestExportService_ExportAttendance(t *testing.T) {
	repo, users, _, _ := newMockRepository()
	seedDirectory(t, users)
	attSvc := newAttendanceServiceForTest(t, repo)
	attSvc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	svc := NewExportService(repo, zap.NewNop())
	ctx := context.Background()

	if _, err := attSvc.CheckIn(ctx, employeeIdentity); err != nil {
		t.Fatalf("准备数据失败: %v", err)
	}

	// 员工无权导出
	if _, _, err := svc.ExportAttendance(ctx, employeeIdentity, nil); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("员工导出报表应返回 ErrForbidden，实际为 %v", err)
	}

	buf, filename, err := svc.ExportAttendance(ctx, adminIdentity, nil)
	if err != nil {
		t.Fatalf("管理员导出报表应成功: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("导出的 Excel 不应为空")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("导出文件名应以 .xlsx 结尾，实际为 %s", filename)
	}
}

func TestExportService_ExportAttendance_NoRecords(t *testing.T) {
	repo, users, _, _ := newMockRepository()
	seedDirectory(t, users)
	svc := NewExportService(repo, zap.NewNop())

	if _, _, err := svc.ExportAttendance(context.Background(), adminIdentity, nil); !errors.Is(err, ErrExportNoRecords) {
		t.Errorf("无记录时导出应返回 ErrExportNoRecords，实际为 %v", err)
	}
}

func TestExportService_ExportAttendance_InvalidDate(t *testing.T) {
	repo, users, _, _ := newMockRepository()
	seedDirectory(t, users)
	svc := NewExportService(repo, zap.NewNop())

	req := &dto.AttendanceListRequest{FromDate: "bad"}
	if _, _, err := svc.ExportAttendance(context.Background(), adminIdentity, req); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("非法过滤日期应返回 ErrInvalidDate，实际为 %v", err)
	}
}

func TestExportService_ExportLeaveCalendar(t *testing.T) {
	repo, users, _, _ := newMockRepository()
	seedDirectory(t, users)
	leaveSvc := newLeaveServiceForTest(t, repo)
	svc := NewExportService(repo, zap.NewNop())
	ctx := context.Background()

	approved := submitLeave(t, leaveSvc, employeeIdentity, "2026-03-10", "2026-03-12", "家事")
	if _, err := leaveSvc.Approve(ctx, adminIdentity, approved.ID); err != nil {
		t.Fatalf("批准失败: %v", err)
	}
	pending := submitLeave(t, leaveSvc, employeeIdentity, "2026-04-01", "2026-04-02", "待审批的申请")
	rejected := submitLeave(t, leaveSvc, employeeIdentity, "2026-05-01", "2026-05-02", "被驳回的申请")
	if _, err := leaveSvc.Reject(ctx, adminIdentity, rejected.ID); err != nil {
		t.Fatalf("驳回失败: %v", err)
	}

	buf, filename, err := svc.ExportLeaveCalendar(ctx, employeeIdentity, testEmployeeID)
	if err != nil {
		t.Fatalf("导出本人日历应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".ics") {
		t.Errorf("导出文件名应以 .ics 结尾，实际为 %s", filename)
	}

	body := buf.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		t.Error("导出内容应为 iCalendar 格式")
	}
	// 只有已批准的申请进入日历
	if !strings.Contains(body, approved.ID) {
		t.Error("日历应包含已批准的申请")
	}
	if strings.Contains(body, pending.ID) || strings.Contains(body, rejected.ID) {
		t.Error("日历不应包含待审批或已驳回的申请")
	}
}

func TestExportService_ExportLeaveCalendar_Forbidden(t *testing.T) {
	repo, users, _, _ := newMockRepository()
	seedDirectory(t, users)
	svc := NewExportService(repo, zap.NewNop())
	ctx := context.Background()

	// 员工不能导出他人日历，管理员可以
	if _, _, err := svc.ExportLeaveCalendar(ctx, otherIdentity, testEmployeeID); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("员工导出他人日历应返回 ErrForbidden，实际为 %v", err)
	}
	if _, _, err := svc.ExportLeaveCalendar(ctx, adminIdentity, testEmployeeID); err != nil {
		t.Errorf("管理员导出任意用户日历应成功，实际错误: %v", err)
	}
}
