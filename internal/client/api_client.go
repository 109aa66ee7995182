package client

import (
	"bytes"
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

// APIClient コーヒーショップAPI（/api/...）のHTTPクライアント
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient 新しいAPIClientを作成
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// GetCoffeeStoresByLocation 周辺のコーヒーショップ一覧を取得（latLong が空ならサーバーのデフォルト地点）
func (c *APIClient) GetCoffeeStoresByLocation(ctx context.Context, latLong string, limit int) ([]model.CoffeeStore, error) {
	params := url.Values{}
	if latLong != "" {
		params.Set("latLong", latLong)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var stores []model.CoffeeStore
	if err := c.do(ctx, http.MethodGet, "/api/getCoffeeStoresByLocation", params, nil, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

// GetCoffeeStoreByID IDでコーヒーショップを取得（0件または1件）
func (c *APIClient) GetCoffeeStoreByID(ctx context.Context, id string) ([]model.CoffeeStore, error) {
	params := url.Values{}
	params.Set("id", id)

	var stores []model.CoffeeStore
	if err := c.do(ctx, http.MethodGet, "/api/getCoffeeStoreById", params, nil, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

// CreateCoffeeStore 候補レコードを登録する（登録済みなら既存レコードが返る）
func (c *APIClient) CreateCoffeeStore(ctx context.Context, store model.CoffeeStore) (*model.CoffeeStore, error) {
	body := model.CoffeeStore{
		ID:            store.ID,
		Name:          store.Name,
		Voting:        0,
		ImgURL:        store.ImgURL,
		Neighbourhood: store.Neighbourhood,
		Address:       store.Address,
		LocationKey:   store.LocationKey,
		Latitude:      store.Latitude,
		Longitude:     store.Longitude,
	}

	var created model.CoffeeStore
	if err := c.do(ctx, http.MethodPost, "/api/createCoffeeStore", nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// FavoriteCoffeeStoreByID 投票数を1増やす
func (c *APIClient) FavoriteCoffeeStoreByID(ctx context.Context, id string) ([]model.CoffeeStore, error) {
	var stores []model.CoffeeStore
	if err := c.do(ctx, http.MethodPut, "/api/favoriteCoffeeStoreById", nil, model.FavoriteCoffeeStoreRequest{ID: id}, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディの作成に失敗: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", model.ErrRemoteUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", model.ErrRemoteUnavailable, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := model.ParseAPIError(resp.StatusCode, respBody)
		return fmt.Errorf("%w: %s %s: %w", kindError(apiErr.Code), method, path, apiErr)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", model.ErrDataFormat, method, path, err)
	}
	return nil
}

// kindError レスポンスの error フィールドを対応するエラーに戻す
func kindError(code any) error {
	kind, _ := code.(string)
	switch kind {
	case "not_found":
		return model.ErrNotFound
	case "conflict":
		return model.ErrConflict
	case "data_format":
		return model.ErrDataFormat
	case "invalid_argument":
		return model.ErrInvalidArgument
	default:
		return model.ErrRemoteUnavailable
	}
}
