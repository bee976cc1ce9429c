package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Shivappapadennavar/attend/internal/dto"
	"github.com/Shivappapadennavar/attend/internal/service"
	"github.com/Shivappapadennavar/attend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// CheckIn 签到
// POST /api/v1/attendance/check-in
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	rec, err := h.attendanceSvc.CheckIn(c.Request.Context(), caller)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, rec)
}

// CheckOut 签退
// POST /api/v1/attendance/check-out
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	rec, err := h.attendanceSvc.CheckOut(c.Request.Context(), caller)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, rec)
}

// GetToday 当前用户今日考勤状态
// GET /api/v1/attendance/today
func (h *AttendanceHandler) GetToday(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	rec, err := h.attendanceSvc.GetRecord(c.Request.Context(), caller, caller.UserID, c.Query("date"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, rec)
}

// ListForUser 某用户的考勤历史
// GET /api/v1/attendance/users/:id
func (h *AttendanceHandler) ListForUser(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	userID := c.Param("id")
	if userID == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	recs, err := h.attendanceSvc.ListForUser(c.Request.Context(), caller, userID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": recs})
}

// ListAll 管理员跨用户考勤列表
// GET /api/v1/attendance
func (h *AttendanceHandler) ListAll(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	recs, err := h.attendanceSvc.ListAll(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": recs})
}

// handleAttendanceError 统一处理考勤模块业务错误
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	if handleAuthzError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		response.Conflict(c, 14001, "今天已签到，不能重复签到")
	case errors.Is(err, service.ErrNotCheckedIn):
		response.Conflict(c, 14002, "今天尚未签到")
	case errors.Is(err, service.ErrAlreadyCheckedOut):
		response.Conflict(c, 14003, "今天已签退")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14004, "日期格式无效")
	default:
		response.InternalError(c)
	}
}
