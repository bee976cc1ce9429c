package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Shivappapadennavar/attend/internal/dto"
	"github.com/Shivappapadennavar/attend/internal/service"
	"github.com/Shivappapadennavar/attend/pkg/response"
)

// LeaveHandler 请假模块 HTTP 处理器
type LeaveHandler struct {
	leaveSvc service.LeaveService
}

// NewLeaveHandler 创建 LeaveHandler
func NewLeaveHandler(leaveSvc service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveSvc: leaveSvc}
}

// Submit 提交请假申请
// POST /api/v1/leaves
func (h *LeaveHandler) Submit(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	leave, err := h.leaveSvc.Submit(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.Created(c, leave)
}

// Approve 批准请假申请
// POST /api/v1/leaves/:id/approve
func (h *LeaveHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject 驳回请假申请
// POST /api/v1/leaves/:id/reject
func (h *LeaveHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *LeaveHandler) decide(c *gin.Context, approve bool) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	leaveID := c.Param("id")
	if leaveID == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	var (
		leave *dto.LeaveResponse
		err   error
	)
	if approve {
		leave, err = h.leaveSvc.Approve(c.Request.Context(), caller, leaveID)
	} else {
		leave, err = h.leaveSvc.Reject(c.Request.Context(), caller, leaveID)
	}
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, leave)
}

// ListPending 待审批队列
// GET /api/v1/leaves/pending
func (h *LeaveHandler) ListPending(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	leaves, err := h.leaveSvc.ListPending(c.Request.Context(), caller)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, gin.H{"list": leaves})
}

// ListForUser 某用户的请假历史
// GET /api/v1/leaves/users/:id
func (h *LeaveHandler) ListForUser(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	userID := c.Param("id")
	if userID == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	leaves, err := h.leaveSvc.ListForUser(c.Request.Context(), caller, userID)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, gin.H{"list": leaves})
}

// handleLeaveError 统一处理请假模块业务错误
func (h *LeaveHandler) handleLeaveError(c *gin.Context, err error) {
	if handleAuthzError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrLeaveNotFound):
		response.NotFound(c, 15001, "请假申请不存在")
	case errors.Is(err, service.ErrInvalidRange):
		response.BadRequest(c, 15002, "请假日期范围无效")
	case errors.Is(err, service.ErrEmptyReason):
		response.BadRequest(c, 15003, "请假事由不能为空")
	case errors.Is(err, service.ErrAlreadyDecided):
		response.Conflict(c, 15004, "该申请已审批，不能重复操作")
	default:
		response.InternalError(c)
	}
}
