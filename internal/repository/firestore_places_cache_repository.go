package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"CoffeeStore-App/internal/domain/model"
	"CoffeeStore-App/internal/domain/repository"
)

const placesCacheCollection = "coffeeStoreSearches"

// FirestorePlacesCacheRepository Firestoreを使用した周辺検索結果のキャッシュリポジトリ
type FirestorePlacesCacheRepository struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestorePlacesCacheRepository 新しいFirestorePlacesCacheRepositoryインスタンスを作成
func NewFirestorePlacesCacheRepository(client *firestore.Client) repository.PlacesCacheRepository {
	return &FirestorePlacesCacheRepository{
		client: client,
		now:    time.Now,
	}
}

// firestoreSearchEntry Firestoreに保存する検索結果ドキュメント
type firestoreSearchEntry struct {
	Stores    []firestoreCoffeeStore `firestore:"stores"`
	CreatedAt time.Time              `firestore:"createdAt"`
	ExpiresAt time.Time              `firestore:"expiresAt"`
}

type firestoreCoffeeStore struct {
	ID            string   `firestore:"id"`
	Name          string   `firestore:"name"`
	Address       string   `firestore:"address"`
	Neighbourhood string   `firestore:"neighbourhood"`
	ImgURL        string   `firestore:"imgUrl"`
	LocationKey   string   `firestore:"locationKey"`
	Latitude      *float64 `firestore:"latitude"`
	Longitude     *float64 `firestore:"longitude"`
}

// Get キャッシュされた検索結果を取得する（期限切れは未ヒット扱い）
func (r *FirestorePlacesCacheRepository) Get(ctx context.Context, key string) ([]model.CoffeeStore, bool, error) {
	doc, err := r.client.Collection(placesCacheCollection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: 検索キャッシュの取得に失敗しました: %w", model.ErrRemoteUnavailable, err)
	}

	var entry firestoreSearchEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, false, fmt.Errorf("%w: データの変換に失敗しました: %w", model.ErrDataFormat, err)
	}

	if !r.now().Before(entry.ExpiresAt) {
		return nil, false, nil
	}

	stores := make([]model.CoffeeStore, 0, len(entry.Stores))
	for _, s := range entry.Stores {
		stores = append(stores, model.CoffeeStore{
			ID:            s.ID,
			Name:          s.Name,
			Address:       s.Address,
			Neighbourhood: s.Neighbourhood,
			ImgURL:        s.ImgURL,
			LocationKey:   s.LocationKey,
			Latitude:      s.Latitude,
			Longitude:     s.Longitude,
		})
	}
	return stores, true, nil
}

// Save 検索結果を有効期限付きで保存する
func (r *FirestorePlacesCacheRepository) Save(ctx context.Context, key string, stores []model.CoffeeStore, ttl time.Duration) error {
	now := r.now()
	entry := firestoreSearchEntry{
		Stores:    make([]firestoreCoffeeStore, 0, len(stores)),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	for _, s := range stores {
		entry.Stores = append(entry.Stores, firestoreCoffeeStore{
			ID:            s.ID,
			Name:          s.Name,
			Address:       s.Address,
			Neighbourhood: s.Neighbourhood,
			ImgURL:        s.ImgURL,
			LocationKey:   s.LocationKey,
			Latitude:      s.Latitude,
			Longitude:     s.Longitude,
		})
	}

	if _, err := r.client.Collection(placesCacheCollection).Doc(key).Set(ctx, entry); err != nil {
		return fmt.Errorf("%w: 検索キャッシュの保存に失敗しました: %w", model.ErrRemoteUnavailable, err)
	}

	slog.Debug("✅ search cache saved", "key", key, "stores", len(stores), "ttl", ttl)
	return nil
}
