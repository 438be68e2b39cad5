package service

import (
	"context"
	"math/rand"
	"time"

	"backend/internal/repository"
)

// PollLogger defines the minimal logger interface used by the poller.
type PollLogger interface {
	Infof(format string, args ...interface{})
	Error(args ...interface{})
}

// RunRecoveryPoller は戦闘外のアバターを時間経過で回復させる常駐ループ。
// アクティブなバトルを持つアバターには触らない。
func RunRecoveryPoller(
	ctx context.Context,
	interval time.Duration,
	percent int,
	avatarDelayMax time.Duration,
	avatarRepo repository.AvatarRepository,
	logger PollLogger,
) {
	if interval <= 0 || percent <= 0 {
		return
	}
	logger.Infof("recovery poller start: interval=%s percent=%d avatar_delay_max=%s", interval, percent, avatarDelayMax)
	runRecoveryOnce(ctx, percent, avatarDelayMax, avatarRepo, logger)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runRecoveryOnce(ctx, percent, avatarDelayMax, avatarRepo, logger)
		}
	}
}

func runRecoveryOnce(
	ctx context.Context,
	percent int,
	avatarDelayMax time.Duration,
	avatarRepo repository.AvatarRepository,
	logger PollLogger,
) {
	wounded, err := avatarRepo.ListWounded(ctx)
	if err != nil {
		logger.Error("recovery poll list avatars: ", err)
		return
	}
	if len(wounded) == 0 {
		return
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	restored := 0
	for _, avatar := range wounded {
		amount := avatar.MaxHitPoints * percent / 100
		if amount < 1 {
			amount = 1
		}
		if err := avatarRepo.RestoreHP(ctx, avatar.ID, amount); err != nil {
			logger.Error("recovery poll restore: ", err)
			continue
		}
		restored++
		jitterSleep(ctx, rng, avatarDelayMax)
	}
	logger.Infof("recovery poll done: wounded=%d restored=%d", len(wounded), restored)
}

func jitterSleep(ctx context.Context, rng *rand.Rand, max time.Duration) {
	if max <= 0 {
		return
	}
	delay := time.Duration(rng.Int63n(int64(max)))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
