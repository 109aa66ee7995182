package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"CoffeeStore-App/internal/domain/model"
	"CoffeeStore-App/internal/domain/repository"
	"CoffeeStore-App/internal/infrastructure/database"
)

const coffeeStoresTable = "coffee_stores"

// SupabaseCoffeeStoresRepository Supabase（PostgREST）のテーブルをレコードストアとして使う実装
// IncrementVotes は読み込み→書き込みの2回のリクエストで行うため、
// 別プロセスからの同時投票ではカウントが失われることがある
type SupabaseCoffeeStoresRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseCoffeeStoresRepository(client *database.SupabaseClient) repository.CoffeeStoresRepository {
	return &SupabaseCoffeeStoresRepository{
		client: client,
	}
}

func (r *SupabaseCoffeeStoresRepository) FindByID(ctx context.Context, id string) (*model.CoffeeStore, error) {
	data, _, err := r.client.GetClient().From(coffeeStoresTable).Select("*", "", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: コーヒーショップの取得失敗: %w", model.ErrRemoteUnavailable, err)
	}

	stores, err := decodeRows(data)
	if err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		return nil, nil
	}
	return &stores[0], nil
}

func (r *SupabaseCoffeeStoresRepository) FindByLocationKey(ctx context.Context, key string) ([]model.CoffeeStore, error) {
	data, _, err := r.client.GetClient().From(coffeeStoresTable).Select("*", "", false).Eq("location_key", key).Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: エリア %s のコーヒーショップ取得失敗: %w", model.ErrRemoteUnavailable, key, err)
	}
	return decodeRows(data)
}

func (r *SupabaseCoffeeStoresRepository) Create(ctx context.Context, store *model.CoffeeStore) (*model.CoffeeStore, error) {
	row := CoffeeStoreToRow(store)

	data, _, err := r.client.GetClient().From(coffeeStoresTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: コーヒーショップ %s は既に存在します", model.ErrConflict, store.ID)
		}
		return nil, fmt.Errorf("%w: コーヒーショップの作成失敗: %w", model.ErrRemoteUnavailable, err)
	}

	stores, err := decodeRows(data)
	if err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		return nil, fmt.Errorf("%w: 作成したレコードが返されませんでした", model.ErrDataFormat)
	}
	return &stores[0], nil
}

func (r *SupabaseCoffeeStoresRepository) IncrementVotes(ctx context.Context, id string) (*model.CoffeeStore, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: コーヒーショップ %s", model.ErrNotFound, id)
	}

	update := map[string]int{"voting": current.Voting + 1}
	data, _, err := r.client.GetClient().From(coffeeStoresTable).Update(update, "representation", "").Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: 投票数の更新失敗: %w", model.ErrRemoteUnavailable, err)
	}

	stores, err := decodeRows(data)
	if err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		// 読み込みと更新の間に削除された
		return nil, fmt.Errorf("%w: コーヒーショップ %s", model.ErrNotFound, id)
	}
	return &stores[0], nil
}

func (r *SupabaseCoffeeStoresRepository) AtomicIncrement() bool {
	return false
}

func (r *SupabaseCoffeeStoresRepository) HealthCheck(ctx context.Context) error {
	if err := r.client.HealthCheck(); err != nil {
		return err
	}
	if _, _, err := r.client.GetClient().From(coffeeStoresTable).Select("id", "exact", true).Execute(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrRemoteUnavailable, err)
	}
	return nil
}

func decodeRows(data []byte) ([]model.CoffeeStore, error) {
	var rows []CoffeeStoreRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: コーヒーショップのJSONアンマーシャル失敗: %w", model.ErrDataFormat, err)
	}

	stores := make([]model.CoffeeStore, 0, len(rows))
	for i := range rows {
		if !rows[i].Validate() {
			return nil, fmt.Errorf("%w: 不正なレコード (id=%q)", model.ErrDataFormat, rows[i].ID)
		}
		stores = append(stores, rows[i].ToCoffeeStore())
	}
	return stores, nil
}

// isDuplicateKey PostgREST が返す一意制約違反（23505）かどうか
func isDuplicateKey(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
