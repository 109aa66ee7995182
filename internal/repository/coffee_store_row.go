package repository

import (
	"database/sql"

	"CoffeeStore-App/internal/domain/model"
)

// coffeeStoreColumns coffee_stores テーブルのカラム（SELECT / RETURNING 共通）
const coffeeStoreColumns = "id, name, address, neighbourhood, img_url, voting, location_key, latitude, longitude"

// CoffeeStoreRow coffee_stores テーブルの1行（Supabase の JSON 表現）
type CoffeeStoreRow struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Neighbourhood string   `json:"neighbourhood"`
	ImgURL        string   `json:"img_url"`
	Voting        *int     `json:"voting"`
	LocationKey   string   `json:"location_key"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}

// CoffeeStoreToRow model.CoffeeStore を DB 保存用に変換
func CoffeeStoreToRow(store *model.CoffeeStore) *CoffeeStoreRow {
	voting := store.Voting
	return &CoffeeStoreRow{
		ID:            store.ID,
		Name:          store.Name,
		Address:       store.Address,
		Neighbourhood: store.Neighbourhood,
		ImgURL:        store.ImgURL,
		Voting:        &voting,
		LocationKey:   store.LocationKey,
		Latitude:      store.Latitude,
		Longitude:     store.Longitude,
	}
}

// Validate 必須カラムがそろっているか
func (r *CoffeeStoreRow) Validate() bool {
	return r.ID != "" && r.Voting != nil && *r.Voting >= 0
}

// ToCoffeeStore DB の行を model.CoffeeStore に変換
func (r *CoffeeStoreRow) ToCoffeeStore() model.CoffeeStore {
	store := model.CoffeeStore{
		ID:            r.ID,
		Name:          r.Name,
		Address:       r.Address,
		Neighbourhood: r.Neighbourhood,
		ImgURL:        r.ImgURL,
		LocationKey:   r.LocationKey,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
	}
	if r.Voting != nil {
		store.Voting = *r.Voting
	}
	return store
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCoffeeStore coffeeStoreColumns の順に1行を読み込む
func scanCoffeeStore(row rowScanner) (*model.CoffeeStore, error) {
	var (
		store    model.CoffeeStore
		lat, lng sql.NullFloat64
	)
	err := row.Scan(&store.ID, &store.Name, &store.Address, &store.Neighbourhood,
		&store.ImgURL, &store.Voting, &store.LocationKey, &lat, &lng)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		store.Latitude = &lat.Float64
		store.Longitude = &lng.Float64
	}
	return &store, nil
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
