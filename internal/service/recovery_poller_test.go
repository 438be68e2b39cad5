package service

import (
	"context"
	"testing"

	"backend/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Infof(format string, args ...interface{}) {}
func (nopLogger) Error(args ...interface{})                {}

func TestRunRecoveryOnce(t *testing.T) {
	repo := newFakeAvatarRepo()
	repo.put(domain.Avatar{ID: "a1", UserID: "u1", MaxHitPoints: 100, HitPoints: 30})
	repo.put(domain.Avatar{ID: "a2", UserID: "u2", MaxHitPoints: 100, HitPoints: 95})
	repo.put(domain.Avatar{ID: "a3", UserID: "u3", MaxHitPoints: 100, HitPoints: 100})

	runRecoveryOnce(context.Background(), 10, 0, repo, nopLogger{})

	a1, _ := repo.GetByID(context.Background(), "a1")
	if a1.HitPoints != 40 {
		t.Errorf("expected a1 restored to 40, got %d", a1.HitPoints)
	}
	// 上限で止まる。
	a2, _ := repo.GetByID(context.Background(), "a2")
	if a2.HitPoints != 100 {
		t.Errorf("expected a2 capped at 100, got %d", a2.HitPoints)
	}
	a3, _ := repo.GetByID(context.Background(), "a3")
	if a3.HitPoints != 100 {
		t.Errorf("full avatar must be untouched, got %d", a3.HitPoints)
	}
}

func TestRunRecoveryOnceMinimumOne(t *testing.T) {
	repo := newFakeAvatarRepo()
	// 5 * 10% は切り捨てで0になるが、最低1は回復する。
	repo.put(domain.Avatar{ID: "a1", UserID: "u1", MaxHitPoints: 5, HitPoints: 2})

	runRecoveryOnce(context.Background(), 10, 0, repo, nopLogger{})

	a1, _ := repo.GetByID(context.Background(), "a1")
	if a1.HitPoints != 3 {
		t.Errorf("expected minimum restore of 1, got HP %d", a1.HitPoints)
	}
}
