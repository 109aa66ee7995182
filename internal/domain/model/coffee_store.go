package model

import (
	"encoding/json"
	"strings"
)

// PlaceholderImageURL 画像が取得できなかったコーヒーショップに表示するデフォルト画像
const PlaceholderImageURL = "https://images.unsplash.com/photo-1504753793650-d4a2b783c15e?ixid=MnwxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8&ixlib=rb-1.2.1&auto=format&fit=crop&w=2000&q=80"

// CoffeeStore コーヒーショップを表すモデル
type CoffeeStore struct {
	ID            string   `json:"id" db:"id"`
	Name          string   `json:"name" db:"name"`
	Address       string   `json:"address" db:"address"`
	Neighbourhood string   `json:"neighbourhood" db:"neighbourhood"`
	ImgURL        string   `json:"imgUrl" db:"img_url"`
	Voting        int      `json:"voting" db:"voting"`
	LocationKey   string   `json:"locationKey,omitempty" db:"location_key"` // エリアのグルーピングキー
	Latitude      *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude     *float64 `json:"longitude,omitempty" db:"longitude"`
}

// IsEmpty ビルド時プロパティなどで渡された空のストア（{}）かどうか
func (s *CoffeeStore) IsEmpty() bool {
	return s == nil || s.ID == ""
}

// ToLatLng 座標がある場合はLatLngに変換する
func (s *CoffeeStore) ToLatLng() (LatLng, bool) {
	if s.Latitude == nil || s.Longitude == nil {
		return LatLng{}, false
	}
	return LatLng{Lat: *s.Latitude, Lng: *s.Longitude}, true
}

// WithDefaults 保存前の正規化を行ったコピーを返す
// 投票数は常に0から開始し、画像URLが空の場合はプレースホルダーを使う
func (s CoffeeStore) WithDefaults() CoffeeStore {
	s.Voting = 0
	s.Address = strings.TrimSpace(s.Address)
	s.Neighbourhood = strings.TrimSpace(s.Neighbourhood)
	if strings.TrimSpace(s.ImgURL) == "" {
		s.ImgURL = PlaceholderImageURL
	}
	return s
}

// FirstOrEmpty リストの先頭要素を返す（空なら空文字列）
func FirstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Neighbourhood 文字列またはリストのどちらでも受け付ける地区名
// リストの場合は先頭要素だけを保持する
type Neighbourhood string

// UnmarshalJSON string / []string / null を受け付ける
func (n *Neighbourhood) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*n = ""
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*n = Neighbourhood(FirstOrEmpty(list))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = Neighbourhood(s)
	return nil
}

// CreateCoffeeStoreRequest POST /api/createCoffeeStore のリクエストボディ
type CreateCoffeeStoreRequest struct {
	ID            string        `json:"id" binding:"required"`
	Name          string        `json:"name" binding:"required"`
	Voting        int           `json:"voting"`
	ImgURL        string        `json:"imgUrl"`
	Neighbourhood Neighbourhood `json:"neighbourhood"`
	Address       string        `json:"address"`
	LocationKey   string        `json:"locationKey"`
	Latitude      *float64      `json:"latitude"`
	Longitude     *float64      `json:"longitude"`
}

// ToCoffeeStore リクエストを候補レコードに変換
func (r *CreateCoffeeStoreRequest) ToCoffeeStore() CoffeeStore {
	return CoffeeStore{
		ID:            r.ID,
		Name:          r.Name,
		Address:       r.Address,
		Neighbourhood: string(r.Neighbourhood),
		ImgURL:        r.ImgURL,
		Voting:        r.Voting,
		LocationKey:   r.LocationKey,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
	}
}

// FavoriteCoffeeStoreRequest PUT /api/favoriteCoffeeStoreById のリクエストボディ
type FavoriteCoffeeStoreRequest struct {
	ID string `json:"id" binding:"required"`
}

// ErrorResponse APIのエラーレスポンス
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
