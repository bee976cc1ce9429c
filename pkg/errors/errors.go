package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
// 并发写同一条记录时，版本校验失败的一方收到该错误；
// 由 Service 层翻译成对应的业务终态错误（如"已签退"、"已审批"）。
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
