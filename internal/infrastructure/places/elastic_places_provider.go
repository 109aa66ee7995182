package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/olivere/elastic/v7"

	"CoffeeStore-App/internal/domain/model"
)

// elasticPlace インデックスに格納されたコーヒーショップのドキュメント
type elasticPlace struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Address       string           `json:"address"`
	Neighbourhood []string         `json:"neighbourhood"`
	ImgURL        string           `json:"img_url"`
	Location      elastic.GeoPoint `json:"location"`
}

// ElasticPlacesProvider はElasticsearchのgeo_pointインデックスを使った周辺検索の実装
type ElasticPlacesProvider struct {
	client *elastic.Client
	index  string
}

// NewElasticPlacesProvider は新しいプロバイダを生成する
func NewElasticPlacesProvider(elasticURL, index string) (*ElasticPlacesProvider, error) {
	client, err := elastic.NewClient(elastic.SetURL(elasticURL), elastic.SetSniff(false))
	if err != nil {
		return nil, fmt.Errorf("Elasticsearchクライアントの初期化に失敗: %w", err)
	}
	if index == "" {
		index = "coffee_stores"
	}
	return &ElasticPlacesProvider{client: client, index: index}, nil
}

// SearchNearby は指定地点から近い順に limit 件のドキュメントを返す
func (p *ElasticPlacesProvider) SearchNearby(ctx context.Context, location model.LatLng, limit int) ([]model.CoffeeStore, error) {
	searchResult, err := p.client.Search().
		Index(p.index).
		Query(elastic.NewMatchAllQuery()).
		SortBy(elastic.NewGeoDistanceSort("location").
			Point(location.Lat, location.Lng).
			Asc().
			Unit("km").
			DistanceType("arc").
			IgnoreUnmapped(true)).
		Size(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: elastic: %w", model.ErrRemoteUnavailable, err)
	}
	if searchResult.Hits == nil {
		return nil, fmt.Errorf("%w: elastic: hits がありません", model.ErrDataFormat)
	}

	stores := make([]model.CoffeeStore, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		var place elasticPlace
		if err := json.Unmarshal(hit.Source, &place); err != nil {
			return nil, fmt.Errorf("%w: elastic: hit %s: %w", model.ErrDataFormat, hit.Id, err)
		}
		if place.ID == "" {
			place.ID = hit.Id
		}
		if place.ID == "" || place.Name == "" {
			return nil, fmt.Errorf("%w: elastic: hit %s has no id or name", model.ErrDataFormat, hit.Id)
		}

		lat, lng := place.Location.Lat, place.Location.Lon
		stores = append(stores, model.CoffeeStore{
			ID:            place.ID,
			Name:          place.Name,
			Address:       place.Address,
			Neighbourhood: model.FirstOrEmpty(place.Neighbourhood),
			ImgURL:        place.ImgURL,
			Latitude:      &lat,
			Longitude:     &lng,
		})
	}

	slog.Debug("elastic nearby search", "index", p.index, "hits", len(stores))
	return stores, nil
}
