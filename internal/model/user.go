package model

// 角色取值
const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

// User 用户表 — 对应 users
// 用户由外部开通流程创建（见 cmd/seed），核心内只读
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"` // employee | admin
	Department   string `gorm:"type:varchar(100);not null;default:''"          json:"department"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
