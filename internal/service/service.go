package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/MosaSabaSaba/scheduling/config"
	"github.com/MosaSabaSaba/scheduling/internal/repository"
	"github.com/MosaSabaSaba/scheduling/pkg/jwt"
	"github.com/MosaSabaSaba/scheduling/pkg/redis"
)

// ErrForbidden 授权策略拒绝：调用者无权执行该操作
var ErrForbidden = errors.New("无权执行该操作")

// Publisher 实时事件发布接口
// 由 realtime.Hub 实现；投递为尽力而为，调用方不感知结果
type Publisher interface {
	Publish(event string, payload interface{}, recipients ...string)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth     AuthService
	Employee EmployeeService
	Shift    ShiftService
	Swap     SwapService
	Export   ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	pub Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:     NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Employee: NewEmployeeService(repo, logger),
		Shift:    NewShiftService(repo, pub, logger),
		Swap:     NewSwapService(repo, pub, logger),
		Export:   NewExportService(repo, logger),
	}
}
