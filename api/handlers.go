// Package api serves fare predictions over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"taxi-fare-model/models"
)

// PickupLayout is the wall-clock format of the pickup_datetime parameter.
const PickupLayout = "2006-01-02 15:04:05"

// Handler answers prediction requests with the pipeline its loader returns.
type Handler struct {
	Loader ModelLoader
	// Location is the zone pickup_datetime is expressed in.
	Location *time.Location
}

// NewHandler returns a handler reading request timestamps in timeZone.
func NewHandler(loader ModelLoader, timeZone string) (*Handler, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, err
	}
	return &Handler{Loader: loader, Location: loc}, nil
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"greeting": "Hello world"})
}

// Predict estimates the fare of the trip described by the query string.
// Any failure is a 500; the cause is only logged.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	trip, err := h.tripFromQuery(r.URL.Query())
	if err != nil {
		serverError(w, err)
		return
	}

	p, err := h.Loader.Load()
	if err != nil {
		serverError(w, fmt.Errorf("load model: %w", err))
		return
	}
	pred, err := p.Predict([]models.Trip{trip})
	if err != nil {
		serverError(w, fmt.Errorf("predict: %w", err))
		return
	}
	writeJSON(w, map[string]float64{"key": pred[0]})
}

func (h *Handler) tripFromQuery(q url.Values) (models.Trip, error) {
	var trip models.Trip

	local, err := time.ParseInLocation(PickupLayout, q.Get("pickup_datetime"), h.Location)
	if err != nil {
		return trip, fmt.Errorf("pickup_datetime: %w", err)
	}
	trip.PickupDatetime = local.UTC().Format(models.TripTimeLayout)
	trip.Key = trip.PickupDatetime

	coords := []struct {
		name string
		dst  *float64
	}{
		{"pickup_longitude", &trip.PickupLongitude},
		{"pickup_latitude", &trip.PickupLatitude},
		{"dropoff_longitude", &trip.DropoffLongitude},
		{"dropoff_latitude", &trip.DropoffLatitude},
	}
	for _, c := range coords {
		v, err := strconv.ParseFloat(q.Get(c.name), 64)
		if err != nil {
			return trip, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.dst = v
	}

	trip.PassengerCount, err = strconv.Atoi(q.Get("passenger_count"))
	if err != nil {
		return trip, fmt.Errorf("passenger_count: %w", err)
	}
	return trip, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func serverError(w http.ResponseWriter, err error) {
	log.Printf("Prediction failed: %v", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
