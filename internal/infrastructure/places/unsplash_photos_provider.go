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

const defaultUnsplashBaseURL = "https://api.unsplash.com"

// UnsplashPhotosProvider はUnsplash検索APIからコーヒーショップの写真URLを取得する
type UnsplashPhotosProvider struct {
	accessKey  string
	baseURL    string
	httpClient *http.Client
}

// NewUnsplashPhotosProvider は新しいプロバイダを生成する
func NewUnsplashPhotosProvider(accessKey, baseURL string, httpClient *http.Client) *UnsplashPhotosProvider {
	if baseURL == "" {
		baseURL = defaultUnsplashBaseURL
	}
	return &UnsplashPhotosProvider{
		accessKey:  accessKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListPhotoURLs は "coffee shop" の検索結果から小サイズ画像のURLを最大 limit 件返す
func (p *UnsplashPhotosProvider) ListPhotoURLs(ctx context.Context, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("query", "coffee shop")
	params.Set("page", "1")
	params.Set("per_page", strconv.Itoa(limit))
	reqURL := fmt.Sprintf("%s/search/photos?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+p.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: unsplash: %w", model.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: unsplash: %w", model.ErrRemoteUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unsplash: %w", model.ErrRemoteUnavailable, model.ParseAPIError(resp.StatusCode, body))
	}

	var apiResp unsplashSearchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: unsplash: JSONのパースに失敗: %w", model.ErrDataFormat, err)
	}

	urls := make([]string, 0, len(apiResp.Results))
	for _, photo := range apiResp.Results {
		urls = append(urls, photo.URLs.Small)
	}
	return urls, nil
}

type unsplashSearchResponse struct {
	Results []struct {
		URLs struct {
			Small string `json:"small"`
		} `json:"urls"`
	} `json:"results"`
}
