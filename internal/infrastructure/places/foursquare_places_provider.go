package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"CoffeeStore-App/internal/domain/model"
)

const defaultFoursquareBaseURL = "https://api.foursquare.com/v3"

// FoursquarePlacesProvider はFoursquare Places APIを使用した周辺検索の実装
type FoursquarePlacesProvider struct {
	apiKey     string
	baseURL    string
	query      string
	httpClient *http.Client
}

// NewFoursquarePlacesProvider は新しいプロバイダを生成する
func NewFoursquarePlacesProvider(apiKey, baseURL, query string, httpClient *http.Client) *FoursquarePlacesProvider {
	if baseURL == "" {
		baseURL = defaultFoursquareBaseURL
	}
	if query == "" {
		query = "coffee"
	}
	return &FoursquarePlacesProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		query:      query,
		httpClient: httpClient,
	}
}

// SearchNearby は指定地点周辺のコーヒーショップを検索し、候補レコードに変換して返す
func (p *FoursquarePlacesProvider) SearchNearby(ctx context.Context, location model.LatLng, limit int) ([]model.CoffeeStore, error) {
	params := url.Values{}
	params.Set("query", p.query)
	params.Set("ll", location.String())
	params.Set("limit", strconv.Itoa(limit))
	reqURL := fmt.Sprintf("%s/places/search?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: foursquare: %w", model.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: foursquare: レスポンスの読み込みに失敗: %w", model.ErrRemoteUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: foursquare: %w", model.ErrRemoteUnavailable, model.ParseAPIError(resp.StatusCode, body))
	}

	var apiResp foursquareSearchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: foursquare: JSONのパースに失敗: %w", model.ErrDataFormat, err)
	}
	if apiResp.Results == nil {
		return nil, fmt.Errorf("%w: foursquare: results がありません", model.ErrDataFormat)
	}

	stores := make([]model.CoffeeStore, 0, len(apiResp.Results))
	for i, r := range apiResp.Results {
		store, err := r.toCoffeeStore()
		if err != nil {
			return nil, fmt.Errorf("%w: foursquare: results[%d]: %v", model.ErrDataFormat, i, err)
		}
		stores = append(stores, store)
	}

	return stores, nil
}

// --- Foursquare Places APIのレスポンスをパースするための構造体 ---

type foursquareSearchResponse struct {
	Results []foursquarePlace `json:"results"`
}

type foursquarePlace struct {
	FsqID    string             `json:"fsq_id"`
	Name     string             `json:"name"`
	Location foursquareLocation `json:"location"`
	Geocodes struct {
		Main *foursquareGeocode `json:"main"`
	} `json:"geocodes"`
}

type foursquareLocation struct {
	Address          string   `json:"address"`
	FormattedAddress string   `json:"formatted_address"`
	Neighborhood     []string `json:"neighborhood"`
	Locality         string   `json:"locality"`
}

type foursquareGeocode struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r foursquarePlace) toCoffeeStore() (model.CoffeeStore, error) {
	if strings.TrimSpace(r.FsqID) == "" {
		return model.CoffeeStore{}, fmt.Errorf("fsq_id is empty")
	}
	if strings.TrimSpace(r.Name) == "" {
		return model.CoffeeStore{}, fmt.Errorf("name is empty (fsq_id=%s)", r.FsqID)
	}

	address := r.Location.Address
	if address == "" {
		address = r.Location.FormattedAddress
	}

	store := model.CoffeeStore{
		ID:            r.FsqID,
		Name:          r.Name,
		Address:       address,
		Neighbourhood: model.FirstOrEmpty(r.Location.Neighborhood),
	}
	if r.Geocodes.Main != nil {
		lat, lng := r.Geocodes.Main.Latitude, r.Geocodes.Main.Longitude
		store.Latitude = &lat
		store.Longitude = &lng
	}
	return store, nil
}
