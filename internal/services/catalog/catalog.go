// Package catalog отдаёт справочные данные магазина: агентов и тарифные планы.
//
// Каталог для этого сервиса только читается, поэтому списки кэшируются
// в Redis целиком. Недоступный кэш не ломает чтение — запрос уходит в базу.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/somlabs/agentstore/internal/lib/sl"
	"github.com/somlabs/agentstore/internal/models"
)

const cacheTTL = 10 * time.Minute

// CatalogRepository описывает чтение каталога из хранилища.
type CatalogRepository interface {
	ListAgents(ctx context.Context) ([]*models.Agent, error)
	ListAgentsByCategory(ctx context.Context, category string) ([]*models.Agent, error)
	GetAgent(ctx context.Context, id string) (*models.Agent, error)
	FindAgentsByIDs(ctx context.Context, ids []string) ([]*models.Agent, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
}

// Cache описывает используемое подмножество кэша.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service отдаёт каталог с кэшированием списков.
type Service struct {
	repo  CatalogRepository
	cache Cache
	log   *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo CatalogRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListAgents возвращает весь каталог агентов.
func (s *Service) ListAgents(ctx context.Context) ([]*models.Agent, error) {
	const op = "catalog.ListAgents"

	var agents []*models.Agent
	if s.lookupCache(ctx, "catalog:agents", &agents) {
		return agents, nil
	}

	agents, err := s.repo.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.storeCache(ctx, "catalog:agents", agents)
	return agents, nil
}

// ListAgentsByCategory возвращает агентов одной категории.
func (s *Service) ListAgentsByCategory(ctx context.Context, category string) ([]*models.Agent, error) {
	const op = "catalog.ListAgentsByCategory"

	key := "catalog:agents:" + category
	var agents []*models.Agent
	if s.lookupCache(ctx, key, &agents) {
		return agents, nil
	}

	agents, err := s.repo.ListAgentsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.storeCache(ctx, key, agents)
	return agents, nil
}

// GetAgent возвращает одного агента по идентификатору.
func (s *Service) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	return s.repo.GetAgent(ctx, id)
}

// FindAgentsByIDs возвращает агентов по набору идентификаторов,
// мимо кэша: используется платёжной проверкой, которой нужны
// актуальные цены из базы.
func (s *Service) FindAgentsByIDs(ctx context.Context, ids []string) ([]*models.Agent, error) {
	return s.repo.FindAgentsByIDs(ctx, ids)
}

// ListPlans возвращает тарифные планы по возрастанию цены.
func (s *Service) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "catalog.ListPlans"

	var plans []*models.Plan
	if s.lookupCache(ctx, "catalog:plans", &plans) {
		return plans, nil
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.storeCache(ctx, "catalog:plans", plans)
	return plans, nil
}

// GetPlan возвращает один тарифный план по идентификатору.
func (s *Service) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	return s.repo.GetPlan(ctx, id)
}

func (s *Service) lookupCache(ctx context.Context, key string, result any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, result)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", key), sl.Err(err))
		return false
	}
	return found
}

func (s *Service) storeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, cacheTTL); err != nil {
		s.log.Warn("cache store failed", slog.String("key", key), sl.Err(err))
	}
}
