package helper

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/maptile"

	"CoffeeStore-App/internal/domain/model"
)

// LocationKeyZoom ロケーションキーに使うタイルのズームレベル（約2.4km四方）
const LocationKeyZoom maptile.Zoom = 14

// LocationKey 座標を含むタイルからエリアのグルーピングキーを作る
func LocationKey(location model.LatLng) string {
	tile := maptile.At(orb.Point{location.Lng, location.Lat}, LocationKeyZoom)
	return fmt.Sprintf("%d-%d-%d", tile.Z, tile.X, tile.Y)
}

// DistanceMeters 2点間の距離（メートル）
func DistanceMeters(a, b model.LatLng) float64 {
	return geo.Distance(orb.Point{a.Lng, a.Lat}, orb.Point{b.Lng, b.Lat})
}

// AssignLocationKeys 座標を持つストアにロケーションキーを設定する
func AssignLocationKeys(stores []model.CoffeeStore) {
	for i := range stores {
		if stores[i].LocationKey != "" {
			continue
		}
		if ll, ok := stores[i].ToLatLng(); ok {
			stores[i].LocationKey = LocationKey(ll)
		}
	}
}

// SortByDistance origin から近い順に並べ替える
// 座標のないストアは元の順序のまま末尾に置く
func SortByDistance(stores []model.CoffeeStore, origin model.LatLng) {
	sort.SliceStable(stores, func(i, j int) bool {
		li, okI := stores[i].ToLatLng()
		lj, okJ := stores[j].ToLatLng()
		switch {
		case okI && okJ:
			return DistanceMeters(origin, li) < DistanceMeters(origin, lj)
		case okI:
			return true
		default:
			return false
		}
	})
}
