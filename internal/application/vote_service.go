package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"CoffeeStore-App/internal/domain/model"
	"CoffeeStore-App/internal/domain/repository"
)

// VoteService 投票（いいね）に関するビジネスロジックを提供するサービス
type VoteService interface {
	// Upvote 投票数を1増やし、更新後のレコードを返す
	Upvote(ctx context.Context, id string) (*model.CoffeeStore, error)
}

// voteServiceImpl VoteServiceの実装
// レコードストアが原子的な加算を持たない場合、同一プロセス内ではIDごとに直列化する
// 複数プロセスからの同時投票は引き続きカウントを失う可能性がある
type voteServiceImpl struct {
	storesRepo repository.CoffeeStoresRepository
	locks      *keyedMutex
}

// NewVoteService VoteServiceの新しいインスタンスを作成
func NewVoteService(storesRepo repository.CoffeeStoresRepository) VoteService {
	return &voteServiceImpl{
		storesRepo: storesRepo,
		locks:      newKeyedMutex(),
	}
}

// Upvote 存在しないIDの場合は model.ErrNotFound を返し、書き込みは行わない
func (s *voteServiceImpl) Upvote(ctx context.Context, id string) (*model.CoffeeStore, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id は必須です", model.ErrInvalidArgument)
	}

	if !s.storesRepo.AtomicIncrement() {
		unlock := s.locks.Lock(id)
		defer unlock()
	}

	store, err := s.storesRepo.IncrementVotes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("投票の記録失敗: %w", err)
	}

	slog.Info("vote recorded", "id", store.ID, "voting", store.Voting)
	return store, nil
}
