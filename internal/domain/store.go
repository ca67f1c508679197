package domain

import "math"

const earthRadiusKm = 6371.0

// StoreLocation is the geocoded position of an establishment. Latitude and
// Longitude are nil until the store has been geocoded.
type StoreLocation struct {
	ID               int64    `json:"id"        db:"id"`
	Name             string   `json:"nombre"    db:"name"`
	Latitude         *float64 `json:"latitud"   db:"latitude"`
	Longitude        *float64 `json:"longitud"  db:"longitude"`
	FormattedAddress string   `json:"direccion" db:"formatted_address"`
}

// HasCoordinates reports whether the store has been geocoded.
func (s StoreLocation) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// NearbyStore is a located store with its distance from a query point.
type NearbyStore struct {
	StoreLocation
	DistanceKm float64 `json:"distancia_km"`
}

// Place is a place-lookup hit.
type Place struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	DisplayName      string
}

// HaversineKm returns the great-circle distance between two points in
// kilometres.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
