package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Shivappapadennavar/attend/internal/authz"
	"github.com/Shivappapadennavar/attend/internal/dto"
	"github.com/Shivappapadennavar/attend/internal/model"
	"github.com/Shivappapadennavar/attend/internal/repository"
)

var ErrUserNotFound = errors.New("用户不存在")

// UserService 用户目录业务接口
//
// 目录是只读的：用户由外部开通流程创建，核心内不提供增删改。
// Resolve 供请假/考勤模块内部解析申请人；对未知 ID 的调用属于
// 数据完整性故障，调用方不应把它当作用户输入错误处理。
type UserService interface {
	// List 全员列表（管理员），按姓名升序
	List(ctx context.Context, caller authz.Identity) ([]dto.UserResponse, error)
	// Resolve 按 ID 解析用户；未知 ID 返回 ErrUserNotFound
	Resolve(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) List(ctx context.Context, caller authz.Identity) ([]dto.UserResponse, error) {
	if err := authz.Can(caller, authz.ActionListUsers, authz.AnyResource()); err != nil {
		return nil, err
	}

	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, nil
}

func (s *userService) Resolve(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// toUserResponse 模型转响应（脱敏）
func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         user.UserID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Department: user.Department,
	}
}
