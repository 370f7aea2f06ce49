package service

import (
	"context"
	"time"

	"desk-wallet/pkg/logger"
	"desk-wallet/pkg/utils/lock"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const refreshLockKey = "cron:lock:refresh_accounts"

// AccountRefresher 由 account.Service 实现
type AccountRefresher interface {
	Refresh(ctx context.Context, addr string) error
}

// ActiveAddresses 由 account.Subscriptions 实现
type ActiveAddresses interface {
	Active() []string
}

// CronService 定时刷新正在被观察的账户缓存
type CronService struct {
	cron     *cron.Cron
	locker   lock.DistributedLock
	spec     string
	accounts AccountRefresher
	active   ActiveAddresses
}

func NewCronService(locker lock.DistributedLock, spec string, accounts AccountRefresher, active ActiveAddresses) *CronService {
	return &CronService{
		cron:     cron.New(),
		locker:   locker,
		spec:     spec,
		accounts: accounts,
		active:   active,
	}
}

func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RefreshAccounts); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("Cron Service started", zap.String("spec", s.spec))
	return nil
}

func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Cron Service stopped")
}

// RefreshAccounts 多实例时只有拿到锁的实例执行
func (s *CronService) RefreshAccounts() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	locked, err := s.locker.Acquire(ctx, refreshLockKey, 30*time.Second)
	if err != nil || !locked {
		logger.Debug("RefreshAccounts: 获取锁失败或已有实例在运行", zap.Error(err))
		return
	}
	defer func() { _ = s.locker.Release(context.Background(), refreshLockKey) }()

	addrs := s.active.Active()
	failed := 0
	for _, addr := range addrs {
		if err := s.accounts.Refresh(ctx, addr); err != nil {
			failed++
			logger.Warn("refresh account failed", zap.String("address", addr), zap.Error(err))
		}
	}
	logger.Info("账户缓存刷新完成", zap.Int("accounts", len(addrs)), zap.Int("failed", failed))
}
