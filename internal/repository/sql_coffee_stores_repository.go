package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"CoffeeStore-App/internal/domain/model"
	"CoffeeStore-App/internal/domain/repository"
	"CoffeeStore-App/internal/infrastructure/database"
)

// SQLCoffeeStoresRepository PostgreSQL / SQLite を使ったレコードストアの実装
// 投票数の加算は UPDATE ... SET voting = voting + 1 の1文で行う
type SQLCoffeeStoresRepository struct {
	client *database.SQLClient
}

func NewSQLCoffeeStoresRepository(client *database.SQLClient) repository.CoffeeStoresRepository {
	return &SQLCoffeeStoresRepository{
		client: client,
	}
}

func (r *SQLCoffeeStoresRepository) FindByID(ctx context.Context, id string) (*model.CoffeeStore, error) {
	query := r.client.Rebind(`SELECT ` + coffeeStoreColumns + ` FROM coffee_stores WHERE id = $1`)

	store, err := scanCoffeeStore(r.client.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: コーヒーショップの取得失敗: %w", model.ErrRemoteUnavailable, err)
	}
	return store, nil
}

func (r *SQLCoffeeStoresRepository) FindByLocationKey(ctx context.Context, key string) ([]model.CoffeeStore, error) {
	query := r.client.Rebind(`SELECT ` + coffeeStoreColumns + ` FROM coffee_stores WHERE location_key = $1 ORDER BY voting DESC, id`)

	rows, err := r.client.DB.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("%w: エリア %s のコーヒーショップ取得失敗: %w", model.ErrRemoteUnavailable, key, err)
	}
	defer rows.Close()

	stores := []model.CoffeeStore{}
	for rows.Next() {
		store, err := scanCoffeeStore(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: 行の読み込みに失敗: %w", model.ErrDataFormat, err)
		}
		stores = append(stores, *store)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrRemoteUnavailable, err)
	}
	return stores, nil
}

func (r *SQLCoffeeStoresRepository) Create(ctx context.Context, store *model.CoffeeStore) (*model.CoffeeStore, error) {
	query := r.client.Rebind(`
		INSERT INTO coffee_stores (` + coffeeStoreColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + coffeeStoreColumns)

	created, err := scanCoffeeStore(r.client.DB.QueryRowContext(ctx, query,
		store.ID, store.Name, store.Address, store.Neighbourhood, store.ImgURL,
		store.Voting, store.LocationKey, nullableFloat(store.Latitude), nullableFloat(store.Longitude)))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: コーヒーショップ %s は既に存在します", model.ErrConflict, store.ID)
		}
		return nil, fmt.Errorf("%w: コーヒーショップの作成失敗: %w", model.ErrRemoteUnavailable, err)
	}
	return created, nil
}

func (r *SQLCoffeeStoresRepository) IncrementVotes(ctx context.Context, id string) (*model.CoffeeStore, error) {
	query := r.client.Rebind(`UPDATE coffee_stores SET voting = voting + 1 WHERE id = $1 RETURNING ` + coffeeStoreColumns)

	store, err := scanCoffeeStore(r.client.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: コーヒーショップ %s", model.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: 投票数の更新失敗: %w", model.ErrRemoteUnavailable, err)
	}
	return store, nil
}

func (r *SQLCoffeeStoresRepository) AtomicIncrement() bool {
	return true
}

func (r *SQLCoffeeStoresRepository) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck(ctx)
}

// isUniqueViolation PostgreSQL (23505) と SQLite の一意制約違反を判定する
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
