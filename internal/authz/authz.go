// Package authz 是全局鉴权闸门：一张 (角色, 动作, 归属) 策略表。
//
// 所有 Service 的写操作与受限读操作在进入领域逻辑前都必须先经过 Can，
// 角色判断不散落在各业务方法内部。
package authz

import (
	"errors"

	"github.com/Shivappapadennavar/attend/internal/model"
)

var (
	// ErrUnauthenticated 身份缺失或无法解析，未进入领域逻辑即拒绝
	ErrUnauthenticated = errors.New("未认证")
	// ErrForbidden 身份有效但策略不允许该动作
	ErrForbidden = errors.New("无权限执行该操作")
)

// Identity 每个请求解析一次的不可变身份，按值传入所有核心调用
type Identity struct {
	UserID string
	Role   string
}

// IsZero 身份是否缺失
func (id Identity) IsZero() bool {
	return id.UserID == "" || id.Role == ""
}

// Action 策略表中的动作
type Action string

const (
	ActionCheckIn           Action = "attendance.check_in"
	ActionCheckOut          Action = "attendance.check_out"
	ActionReadAttendance    Action = "attendance.read"
	ActionListAllAttendance Action = "attendance.list_all"
	ActionExportAttendance  Action = "attendance.export"
	ActionSubmitLeave       Action = "leave.submit"
	ActionReadLeave         Action = "leave.read"
	ActionDecideLeave       Action = "leave.decide"
	ActionListPendingLeave  Action = "leave.list_pending"
	ActionListUsers         Action = "directory.list_users"
)

// Resource 动作的目标；OwnerID 为空表示跨用户的集合资源
type Resource struct {
	OwnerID string
}

// OwnedBy 以某用户为属主的资源
func OwnedBy(userID string) Resource { return Resource{OwnerID: userID} }

// AnyResource 集合资源（全员列表、待审批队列等）
func AnyResource() Resource { return Resource{} }

// scope 动作允许触达的资源范围
type scope int

const (
	scopeNone scope = iota // 不允许
	scopeOwn               // 仅自己名下的资源
	scopeAny               // 任意资源
)

// policy (role, action) → scope 策略表
//
// 考勤是普遍的自助操作：管理员也只能为自己签到/签退，
// 但可以读取与导出所有人的记录并裁决任意请假申请。
var policy = map[string]map[Action]scope{
	model.RoleEmployee: {
		ActionCheckIn:        scopeOwn,
		ActionCheckOut:       scopeOwn,
		ActionReadAttendance: scopeOwn,
		ActionSubmitLeave:    scopeOwn,
		ActionReadLeave:      scopeOwn,
	},
	model.RoleAdmin: {
		ActionCheckIn:           scopeOwn,
		ActionCheckOut:          scopeOwn,
		ActionReadAttendance:    scopeAny,
		ActionListAllAttendance: scopeAny,
		ActionExportAttendance:  scopeAny,
		ActionSubmitLeave:       scopeOwn,
		ActionReadLeave:         scopeAny,
		ActionDecideLeave:       scopeAny,
		ActionListPendingLeave:  scopeAny,
		ActionListUsers:         scopeAny,
	},
}

// Can 判定身份 id 是否可对资源 res 执行动作 action。
// 允许返回 nil；身份缺失返回 ErrUnauthenticated；策略拒绝返回 ErrForbidden。
func Can(id Identity, action Action, res Resource) error {
	if id.IsZero() {
		return ErrUnauthenticated
	}

	actions, ok := policy[id.Role]
	if !ok {
		return ErrForbidden
	}

	switch actions[action] {
	case scopeAny:
		return nil
	case scopeOwn:
		if res.OwnerID != "" && res.OwnerID == id.UserID {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}
