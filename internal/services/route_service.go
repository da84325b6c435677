package services

import (
	"context"
	"strings"

	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/repositories"
	"busticket/internal/utils"
)

// RouteService manages the fixed route catalogue.
type RouteService struct {
	RouteRepo repositories.RouteRepository
	RequestID string
}

func (s RouteService) List(ctx context.Context, activeOnly bool) ([]models.Route, error) {
	return s.RouteRepo.List(ctx, activeOnly)
}

func (s RouteService) Get(ctx context.Context, id string) (models.Route, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Route{}, domain.ValidationError{Field: "route_id", Msg: "required"}
	}
	return s.RouteRepo.GetByID(ctx, id)
}

func (s RouteService) Create(ctx context.Context, route models.Route) (models.Route, error) {
	route.Origin = utils.NormalizeSpace(route.Origin)
	route.Destination = utils.NormalizeSpace(route.Destination)
	switch {
	case route.Origin == "":
		return models.Route{}, domain.ValidationError{Field: "origin", Msg: "required"}
	case route.Destination == "":
		return models.Route{}, domain.ValidationError{Field: "destination", Msg: "required"}
	case route.Price <= 0:
		return models.Route{}, domain.ValidationError{Field: "price", Msg: "must be positive"}
	case route.DurationHours <= 0:
		return models.Route{}, domain.ValidationError{Field: "duration", Msg: "must be positive"}
	}
	for i := range route.Stops {
		route.Stops[i].Name = utils.NormalizeSpace(route.Stops[i].Name)
		if route.Stops[i].Name == "" {
			return models.Route{}, domain.ValidationError{Field: "stops", Msg: "stop name required"}
		}
		if route.Stops[i].OffsetHours < 0 {
			return models.Route{}, domain.ValidationError{Field: "stops", Msg: "offset must not be negative"}
		}
	}
	return s.RouteRepo.Create(ctx, route)
}

func (s RouteService) Update(ctx context.Context, id string, upd models.RouteUpdate) error {
	return s.RouteRepo.Update(ctx, strings.TrimSpace(id), upd)
}

func (s RouteService) Delete(ctx context.Context, id string) error {
	return s.RouteRepo.Delete(ctx, strings.TrimSpace(id))
}
