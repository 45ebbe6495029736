package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"taxi-fare-model/geo"
	"taxi-fare-model/models"
)

// PostgresSource reads trips previously stored by SaveTrips.
type PostgresSource struct {
	DB *sql.DB
	// GeohashPrefix restricts rows to pickups inside one geohash cell.
	GeohashPrefix string
	// Area also admits pickups in the eight cells around GeohashPrefix.
	Area bool
}

// patterns returns the LIKE patterns pickup geohashes are matched against.
func (s *PostgresSource) patterns() []string {
	cells := []string{s.GeohashPrefix}
	if s.Area && s.GeohashPrefix != "" {
		cells = geo.Area(s.GeohashPrefix)
	}
	for i := range cells {
		cells[i] += "%"
	}
	return cells
}

func (s *PostgresSource) Load(ctx context.Context, nrows int) (*Table, error) {
	query := `SELECT key, fare_amount, pickup_datetime, pickup_longitude, pickup_latitude,
	       dropoff_longitude, dropoff_latitude, passenger_count
	  FROM trips
	 WHERE pickup_geohash LIKE ANY($1)
	 ORDER BY id`
	args := []interface{}{pq.Array(s.patterns())}
	if nrows > 0 {
		query += ` LIMIT $2`
		args = append(args, nrows)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	table := &Table{HasFare: true}
	for rows.Next() {
		var (
			trip   models.Trip
			fare   sql.NullFloat64
			pickup time.Time
		)
		err := rows.Scan(
			&trip.Key,
			&fare,
			&pickup,
			&trip.PickupLongitude,
			&trip.PickupLatitude,
			&trip.DropoffLongitude,
			&trip.DropoffLatitude,
			&trip.PassengerCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trip.PickupDatetime = pickup.UTC().Format(models.TripTimeLayout)
		trip.FareAmount = fare.Float64
		trip.Missing = !fare.Valid
		table.Rows = append(table.Rows, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func (s *PostgresSource) String() string {
	switch {
	case s.GeohashPrefix == "":
		return "postgres:trips"
	case s.Area:
		return "postgres:trips[" + s.GeohashPrefix + "+neighbours]"
	default:
		return "postgres:trips[" + s.GeohashPrefix + "]"
	}
}

// SaveTrips bulk-inserts trips into the trips table with COPY, tagging each
// endpoint with its geohash. Rows must already be cleaned.
func SaveTrips(ctx context.Context, db *sql.DB, trips []models.Trip) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("trips",
		"key", "fare_amount", "pickup_datetime",
		"pickup_longitude", "pickup_latitude", "dropoff_longitude", "dropoff_latitude",
		"passenger_count", "pickup_geohash", "dropoff_geohash",
	))
	if err != nil {
		return 0, fmt.Errorf("prepare copy: %w", err)
	}

	for _, t := range trips {
		pickup, err := time.Parse(models.TripTimeLayout, t.PickupDatetime)
		if err != nil {
			stmt.Close()
			return 0, fmt.Errorf("trip %q: %w", t.Key, err)
		}
		_, err = stmt.ExecContext(ctx,
			t.Key, t.FareAmount, pickup,
			t.PickupLongitude, t.PickupLatitude, t.DropoffLongitude, t.DropoffLatitude,
			t.PassengerCount,
			geo.Encode(t.PickupLatitude, t.PickupLongitude, geo.TripPrecision),
			geo.Encode(t.DropoffLatitude, t.DropoffLongitude, geo.TripPrecision),
		)
		if err != nil {
			stmt.Close()
			return 0, fmt.Errorf("copy trip %q: %w", t.Key, err)
		}
	}
	// An empty Exec flushes the COPY buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(trips), nil
}
