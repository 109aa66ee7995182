package model

import (
	"fmt"
	"strconv"
	"strings"
)

// LatLng 緯度経度を表す基本的な型
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String "lat,lng" 形式（Places APIの ll パラメータと同じ）
func (l LatLng) String() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

// ParseLatLong "43.653,-79.398" 形式の文字列を解析する
func ParseLatLong(s string) (LatLng, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return LatLng{}, fmt.Errorf("%w: latLong must be \"lat,lng\": %q", ErrInvalidArgument, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("%w: invalid latitude %q", ErrInvalidArgument, parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("%w: invalid longitude %q", ErrInvalidArgument, parts[1])
	}

	if lat < -90 || lat > 90 {
		return LatLng{}, fmt.Errorf("%w: 緯度は-90から90の範囲で指定してください", ErrInvalidArgument)
	}
	if lng < -180 || lng > 180 {
		return LatLng{}, fmt.Errorf("%w: 経度は-180から180の範囲で指定してください", ErrInvalidArgument)
	}

	return LatLng{Lat: lat, Lng: lng}, nil
}
