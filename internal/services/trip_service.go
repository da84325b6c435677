package services

import (
	"context"
	"strings"

	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/repositories"
	"busticket/internal/seating"
	"busticket/internal/utils"
)

// TripService serves the search and seat-map pages.
type TripService struct {
	TripRepo  repositories.TripRepository
	RouteRepo repositories.RouteRepository
	RequestID string
}

// Search lists trips matching origin/destination/date filters; empty filters
// match everything. The date must be YYYY-MM-DD when given.
func (s TripService) Search(ctx context.Context, origin, destination, date string) ([]models.Trip, error) {
	origin = utils.NormalizeSpace(origin)
	destination = utils.NormalizeSpace(destination)
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := utils.ParseDate(date); err != nil {
			return nil, domain.ValidationError{Field: "date", Msg: "expected YYYY-MM-DD", Err: err}
		}
	}
	return s.TripRepo.Search(ctx, origin, destination, date)
}

// Get returns one trip with its route and booked-seat snapshot.
func (s TripService) Get(ctx context.Context, id string) (models.Trip, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Trip{}, domain.ValidationError{Field: "trip_id", Msg: "required"}
	}
	return s.TripRepo.GetByID(ctx, id)
}

// StopTimes derives the passing time of every stop on the trip's route,
// including origin and final arrival.
func (s TripService) StopTimes(ctx context.Context, tripID string) ([]seating.StopTime, error) {
	trip, err := s.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}

	route := trip.Route
	if route == nil {
		loaded, err := s.RouteRepo.GetByID(ctx, trip.RouteID)
		if err != nil {
			return nil, err
		}
		route = &loaded
	}
	if len(route.Stops) == 0 {
		full, err := s.RouteRepo.GetByID(ctx, route.ID)
		if err == nil {
			route = &full
		}
	}

	return seating.StopTimes(trip.Departure, *route), nil
}

func (s TripService) Create(ctx context.Context, trip models.Trip) (models.Trip, error) {
	if strings.TrimSpace(trip.RouteID) == "" {
		return models.Trip{}, domain.ValidationError{Field: "route_id", Msg: "required"}
	}
	if trip.Departure.IsZero() {
		return models.Trip{}, domain.ValidationError{Field: "departure", Msg: "required"}
	}
	if trip.SeatCount <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "seat_count", Msg: "must be positive"}
	}
	if _, err := s.RouteRepo.GetByID(ctx, trip.RouteID); err != nil {
		return models.Trip{}, err
	}
	return s.TripRepo.Create(ctx, trip)
}

func (s TripService) Update(ctx context.Context, id string, upd models.TripUpdate) error {
	return s.TripRepo.Update(ctx, strings.TrimSpace(id), upd)
}

func (s TripService) Delete(ctx context.Context, id string) error {
	return s.TripRepo.Delete(ctx, strings.TrimSpace(id))
}
