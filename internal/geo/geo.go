// Package geo implements the trip matching query: great-circle proximity of
// both route endpoints plus a clock-time window, as pure functions over an
// in-memory candidate set. Keeping the geometry out of SQL makes the filter
// testable without a database and portable across storage backends.
package geo

import (
	"math"
	"sort"
	"time"

	"github.com/rideloop/carpool/internal/model"
)

// Matching defaults. Distances are kilometers, speeds km/h.
const (
	DefaultDistanceTolKm = 5.0
	DefaultTimeTol       = time.Hour
	DefaultLimit         = 5
	averageSpeedKmh      = 40.0
	earthRadiusKm        = 6371.0
)

// Point is a WGS84 coordinate pair in degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Query describes a passenger's search. Zero-valued tolerances and limit
// are replaced by the package defaults in Match.
type Query struct {
	Origin        Point
	Dest          Point
	Date          string // "2006-01-02"
	Time          string // "15:04" or "15:04:05"
	DistanceTolKm float64
	TimeTol       time.Duration
	Limit         int
}

// Match pairs a trip with the derived fields the search response exposes:
// the distance from the query origin to the trip origin (2-decimal km) and
// a heuristic travel time at a fixed average speed (whole minutes). This is
// not a routed ETA.
type Match struct {
	Trip             model.Trip
	DistanceKm       float64
	EstimatedMinutes int
}

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// EstimateMinutes converts a distance to driving minutes at the assumed
// average speed, rounded to the nearest whole minute.
func EstimateMinutes(distKm float64) int {
	return int(math.Round(distKm / averageSpeedKmh * 60))
}

// MatchTrips filters candidates against the query and returns matches ordered by
// origin distance ascending (trip ID breaks ties). A trip matches when both
// its origin and destination lie within the distance tolerance (inclusive)
// and its departure time falls inside [query time - tol, query time + tol],
// clamped to the query date. Candidates are expected to already share the
// query date; rows with an unparsable time are skipped. An empty result is
// a valid outcome, never an error.
func MatchTrips(q Query, candidates []model.Trip) []Match {
	distTol := q.DistanceTolKm
	if distTol <= 0 {
		distTol = DefaultDistanceTolKm
	}
	timeTol := q.TimeTol
	if timeTol <= 0 {
		timeTol = DefaultTimeTol
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	qSec, ok := clockSeconds(q.Time)
	if !ok {
		return []Match{}
	}

	out := make([]Match, 0, limit)
	for _, t := range candidates {
		tSec, ok := clockSeconds(t.TripTime)
		if !ok {
			continue
		}
		if !withinWindow(tSec, qSec, int64(timeTol/time.Second)) {
			continue
		}
		origDist := HaversineKm(q.Origin, Point{Lat: t.OriginLat, Lng: t.OriginLng})
		if origDist > distTol {
			continue
		}
		if HaversineKm(q.Dest, Point{Lat: t.DestLat, Lng: t.DestLng}) > distTol {
			continue
		}
		out = append(out, Match{
			Trip:             t,
			DistanceKm:       math.Round(origDist*100) / 100,
			EstimatedMinutes: EstimateMinutes(origDist),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].Trip.ID < out[j].Trip.ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// withinWindow reports whether tSec lies inside [qSec-tol, qSec+tol] with
// inclusive bounds. The window is clamped to the day: a search near
// midnight does not wrap into the adjacent date, matching a same-date
// BETWEEN on the time column.
func withinWindow(tSec, qSec, tolSec int64) bool {
	lo := qSec - tolSec
	if lo < 0 {
		lo = 0
	}
	hi := qSec + tolSec
	if max := int64(24*3600 - 1); hi > max {
		hi = max
	}
	return tSec >= lo && tSec <= hi
}

// clockSeconds parses "15:04:05" or "15:04" into seconds since midnight.
func clockSeconds(s string) (int64, bool) {
	layouts := []string{"15:04:05", "15:04"}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return int64(t.Hour()*3600 + t.Minute()*60 + t.Second()), true
		}
	}
	return 0, false
}
