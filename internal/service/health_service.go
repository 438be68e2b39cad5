package service

import (
	"backend/internal/repository"
	"context"
	"sync/atomic"
)

type HealthService interface {
	MarkReady()
	MarkNotReady()
	Ready(ctx context.Context) bool
	Alive() bool
}

type healthService struct {
	repo  repository.HealthRepository
	ready atomic.Bool
}

func NewHealthService(repo repository.HealthRepository) HealthService {
	return &healthService{repo: repo}
}

func (s *healthService) MarkReady() {
	s.ready.Store(true)
}

func (s *healthService) MarkNotReady() {
	s.ready.Store(false)
}

// Ready はフラグと依存疎通の両方を見る。シャットダウン時は先にフラグを落として
// ロードバランサから外れる。
func (s *healthService) Ready(ctx context.Context) bool {
	if !s.ready.Load() {
		return false
	}
	return s.repo.Ping(ctx) == nil
}

func (s *healthService) Alive() bool {
	return true
}
