package service

import (
	"go.uber.org/zap"

	"github.com/Shivappapadennavar/attend/config"
	"github.com/Shivappapadennavar/attend/internal/repository"
	"github.com/Shivappapadennavar/attend/pkg/jwt"
	"github.com/Shivappapadennavar/attend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Attendance AttendanceService
	Leave      LeaveService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) (*Service, error) {
	attendanceSvc, err := NewAttendanceService(&cfg.Attendance, repo, logger)
	if err != nil {
		return nil, err
	}

	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:       NewUserService(repo, logger),
		Attendance: attendanceSvc,
		Leave:      NewLeaveService(repo, logger),
		Export:     NewExportService(repo, logger),
	}, nil
}
