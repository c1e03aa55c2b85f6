package geo

import (
	"math"
	"testing"
	"time"

	"github.com/rideloop/carpool/internal/model"
)

// kmToLatDeg converts a north-south distance to degrees of latitude so
// tests can place trips at exact distances from a query point.
func kmToLatDeg(km float64) float64 {
	return km * 180 / (math.Pi * 6371.0)
}

func trip(id uint64, origin, dest Point, at string) model.Trip {
	return model.Trip{
		ID:        id,
		OriginLat: origin.Lat, OriginLng: origin.Lng,
		DestLat: dest.Lat, DestLng: dest.Lng,
		TripDate: "2025-06-01",
		TripTime: at,
		Status:   model.TripScheduled,
	}
}

func TestHaversineKm(t *testing.T) {
	p := Point{Lat: 48.137, Lng: 11.575}
	if d := HaversineKm(p, p); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
	// one degree of latitude is ~111.19 km on a 6371 km sphere
	d := HaversineKm(Point{Lat: 0, Lng: 0}, Point{Lat: 1, Lng: 0})
	if math.Abs(d-111.19) > 0.01 {
		t.Fatalf("1 degree latitude = %v km, want ~111.19", d)
	}
}

func TestEstimateMinutes(t *testing.T) {
	// 5 km at 40 km/h is 7.5 minutes, rounded to 8
	if got := EstimateMinutes(5); got != 8 {
		t.Fatalf("EstimateMinutes(5) = %d, want 8", got)
	}
	if got := EstimateMinutes(4); got != 6 {
		t.Fatalf("EstimateMinutes(4) = %d, want 6", got)
	}
	if got := EstimateMinutes(0); got != 0 {
		t.Fatalf("EstimateMinutes(0) = %d, want 0", got)
	}
}

func TestMatchDistanceBoundary(t *testing.T) {
	q := Query{
		Origin: Point{Lat: 0, Lng: 0},
		Dest:   Point{Lat: 1, Lng: 1},
		Date:   "2025-06-01",
		Time:   "09:00",
	}
	// destination right on the query destination; origin offset north
	onEdge := trip(1, Point{Lat: kmToLatDeg(5.0), Lng: 0}, q.Dest, "09:00:00")
	past := trip(2, Point{Lat: kmToLatDeg(5.01), Lng: 0}, q.Dest, "09:00:00")

	// the tolerance comparison is inclusive: set the tolerance to the exact
	// computed distance and the trip must still match
	exact := HaversineKm(q.Origin, Point{Lat: onEdge.OriginLat, Lng: onEdge.OriginLng})
	q.DistanceTolKm = exact
	got := MatchTrips(q, []model.Trip{onEdge, past})
	if len(got) != 1 || got[0].Trip.ID != 1 {
		t.Fatalf("boundary trip not matched: %+v", got)
	}
	if got[0].DistanceKm != 5.00 {
		t.Fatalf("DistanceKm = %v, want 5.00", got[0].DistanceKm)
	}

	q.DistanceTolKm = 5.0
	if got := MatchTrips(q, []model.Trip{past}); len(got) != 0 {
		t.Fatalf("trip 5.01 km away matched with 5 km tolerance: %+v", got)
	}
}

func TestMatchBothEndpointsChecked(t *testing.T) {
	q := Query{
		Origin: Point{Lat: 0, Lng: 0},
		Dest:   Point{Lat: 1, Lng: 1},
		Date:   "2025-06-01",
		Time:   "09:00",
	}
	// origin matches but destination is far off
	farDest := trip(1, q.Origin, Point{Lat: 2, Lng: 2}, "09:00:00")
	if got := MatchTrips(q, []model.Trip{farDest}); len(got) != 0 {
		t.Fatalf("trip with distant destination matched: %+v", got)
	}
}

func TestMatchTimeWindow(t *testing.T) {
	q := Query{
		Origin: Point{Lat: 0, Lng: 0},
		Dest:   Point{Lat: 0, Lng: 0},
		Date:   "2025-06-01",
		Time:   "09:00",
	}
	cases := []struct {
		at   string
		want bool
	}{
		{"08:00:00", true},  // lower bound inclusive
		{"10:00:00", true},  // upper bound inclusive
		{"07:59:59", false}, // one second early
		{"10:00:01", false}, // one second late
		{"09:30:00", true},
	}
	for _, tc := range cases {
		got := MatchTrips(q, []model.Trip{trip(1, q.Origin, q.Dest, tc.at)})
		if (len(got) == 1) != tc.want {
			t.Errorf("trip at %s: matched=%v, want %v", tc.at, len(got) == 1, tc.want)
		}
	}
}

func TestMatchWindowClampedAtMidnight(t *testing.T) {
	q := Query{
		Origin: Point{Lat: 0, Lng: 0},
		Dest:   Point{Lat: 0, Lng: 0},
		Date:   "2025-06-01",
		Time:   "00:30",
	}
	// a 23:45 departure belongs to the previous evening; the window must
	// not wrap around the date boundary
	if got := MatchTrips(q, []model.Trip{trip(1, q.Origin, q.Dest, "23:45:00")}); len(got) != 0 {
		t.Fatalf("window wrapped past midnight: %+v", got)
	}
	if got := MatchTrips(q, []model.Trip{trip(1, q.Origin, q.Dest, "00:05:00")}); len(got) != 1 {
		t.Fatalf("early-morning trip not matched")
	}
}

func TestMatchOrderingAndLimit(t *testing.T) {
	q := Query{
		Origin: Point{Lat: 0, Lng: 0},
		Dest:   Point{Lat: 0, Lng: 0},
		Date:   "2025-06-01",
		Time:   "09:00",
		Limit:  3,
	}
	trips := []model.Trip{
		trip(1, Point{Lat: kmToLatDeg(3), Lng: 0}, q.Dest, "09:00:00"),
		trip(2, Point{Lat: kmToLatDeg(1), Lng: 0}, q.Dest, "09:00:00"),
		trip(3, Point{Lat: kmToLatDeg(2), Lng: 0}, q.Dest, "09:00:00"),
		trip(4, Point{Lat: kmToLatDeg(1), Lng: 0}, q.Dest, "09:00:00"), // ties with 2, higher ID
		trip(5, Point{Lat: kmToLatDeg(4), Lng: 0}, q.Dest, "09:00:00"),
	}
	got := MatchTrips(q, trips)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantOrder := []uint64{2, 4, 3}
	for i, m := range got {
		if m.Trip.ID != wantOrder[i] {
			t.Fatalf("order = %v, want %v", ids(got), wantOrder)
		}
	}
}

func TestMatchEmptyResultIsNotNil(t *testing.T) {
	q := Query{Origin: Point{}, Dest: Point{}, Date: "2025-06-01", Time: "09:00", TimeTol: time.Minute}
	got := MatchTrips(q, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func ids(ms []Match) []uint64 {
	out := make([]uint64, len(ms))
	for i, m := range ms {
		out[i] = m.Trip.ID
	}
	return out
}
