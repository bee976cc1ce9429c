package dto

// ── 考勤模块请求 ──

// AttendanceListRequest 管理员考勤列表过滤参数
// 日期均为 "2006-01-02" 格式；为空表示不过滤
type AttendanceListRequest struct {
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date"   binding:"omitempty,datetime=2006-01-02"`
}

// ── 考勤模块响应 ──

// 单日考勤状态（由时间戳派生，供前端直接渲染）
const (
	DayStatusAbsent    = "absent"     // 当天无记录
	DayStatusCheckedIn = "checked_in" // 已签到未签退
	DayStatusPresent   = "present"    // 已签到且已签退
)

// AttendanceResponse 考勤记录响应
// 当天无记录时 check_in_at / check_out_at 均为空，status 为 absent，
// 与"已签到未签退"可区分
type AttendanceResponse struct {
	ID         string  `json:"id,omitempty"`
	UserID     string  `json:"user_id"`
	UserName   string  `json:"user_name,omitempty"`
	Department string  `json:"department,omitempty"`
	Date       string  `json:"date"`
	CheckInAt  *string `json:"check_in_at"`
	CheckOutAt *string `json:"check_out_at"`
	Status     string  `json:"status"` // absent | checked_in | present
}
