package model

import "time"

// 请假状态取值
// pending 为唯一非终态；approved / rejected 之后不再允许任何变更
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// LeaveRequest 请假申请表 — 对应 leave_requests
type LeaveRequest struct {
	LeaveID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"leave_id"`
	UserID    string     `gorm:"type:uuid;not null"                             json:"user_id"`
	StartDate time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate   time.Time  `gorm:"type:date;not null"                             json:"end_date"`
	Reason    string     `gorm:"type:varchar(500);not null"                     json:"reason"`
	Status    string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | rejected
	DecidedBy *string    `gorm:"type:uuid"                                      json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	VersionedModel

	// 关联
	User    *User `gorm:"foreignKey:UserID;references:UserID"    json:"user,omitempty"`
	Decider *User `gorm:"foreignKey:DecidedBy;references:UserID" json:"decider,omitempty"`
}

// TableName 指定表名
func (LeaveRequest) TableName() string { return "leave_requests" }

// IsDecided 是否已进入终态
func (l *LeaveRequest) IsDecided() bool {
	return l.Status != LeaveStatusPending
}
