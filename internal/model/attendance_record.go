package model

import "time"

// AttendanceRecord 考勤记录表 — 对应 attendance_records
//
// 每人每天至多一条记录，(user_id, work_date) 上有唯一索引。
// 记录在首次签到时隐式创建，签退时更新，永不删除。
// 不变量：check_out_at 为空，或 >= check_in_at；未签到的记录不会有签退。
type AttendanceRecord struct {
	AttendanceID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	UserID       string     `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_user_date" json:"user_id"`
	WorkDate     time.Time  `gorm:"type:date;not null;uniqueIndex:uq_attendance_user_date" json:"work_date"`
	CheckInAt    *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt   *time.Time `json:"check_out_at,omitempty"`
	VersionedModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }
