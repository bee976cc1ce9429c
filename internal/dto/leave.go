package dto

// ── 请假模块请求 ──

// SubmitLeaveRequest 提交请假申请
type SubmitLeaveRequest struct {
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   binding:"required,datetime=2006-01-02"`
	Reason    string `json:"reason"     binding:"required"`
}

// ── 请假模块响应 ──

// LeaveResponse 请假申请响应
type LeaveResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	UserName    string  `json:"user_name,omitempty"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Reason      string  `json:"reason"`
	Status      string  `json:"status"` // pending | approved | rejected
	DecidedBy   *string `json:"decided_by,omitempty"`
	DecidedAt   *string `json:"decided_at,omitempty"`
	SubmittedAt string  `json:"submitted_at"`
}
