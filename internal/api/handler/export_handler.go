package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shivappapadennavar/attend/internal/dto"
	"github.com/Shivappapadennavar/attend/internal/service"
	"github.com/Shivappapadennavar/attend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAttendance 导出考勤报表 (.xlsx)
// GET /api/v1/attendance/export
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// ExportLeaveCalendar 导出已批准请假日历 (.ics)
// GET /api/v1/leaves/users/:id/calendar
func (h *ExportHandler) ExportLeaveCalendar(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	userID := c.Param("id")
	if userID == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportLeaveCalendar(c.Request.Context(), caller, userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// handleExportError 统一处理导出模块业务错误
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if handleAuthzError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrExportNoRecords):
		response.NotFound(c, 16001, "所选范围内没有考勤记录")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 16002, "日期格式无效")
	default:
		response.InternalError(c)
	}
}
