package geo

import "math"

// 打卡地理围栏使用的大圆距离计算，坐标为 WGS84 经纬度

const earthRadiusM = 6371000.0

// Point WGS84 坐标点
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceM 返回两点之间的大圆距离（haversine），单位米
func DistanceM(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// WithinRadius 判断 p 是否在以 center 为圆心 radiusM 米内
func WithinRadius(center, p Point, radiusM float64) bool {
	return DistanceM(center, p) <= radiusM
}
