package mq

import (
	"context"
	"encoding/json"
	"fmt"
)

// Queue names consumed by the route/trip service.
const (
	QueueBookingCreated   = "booking.route.created"
	QueueBookingCancelled = "booking.route.cancelled"
	QueueBookingChanged   = "booking.route.changed"
)

// BookingEvent is the wire payload the trip service consumes to add or
// remove booked seats. Field names follow the consumer's contract.
type BookingEvent struct {
	BookingID   string   `json:"BookingId"`
	TripID      string   `json:"TripId"`
	SeatNumbers []string `json:"SeatNumbers"`
	Status      string   `json:"Status"`
}

// Publisher is satisfied by *RabbitMQ and by test fakes.
type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// BookingEvents emits booking lifecycle messages.
type BookingEvents struct {
	MQ Publisher
}

// SeatChangeEvent is the move contract: the consumer releases the old seats
// and claims the new ones.
type SeatChangeEvent struct {
	BookingID      string   `json:"BookingId"`
	OldTripID      string   `json:"OldTripId"`
	OldSeatNumbers []string `json:"OldSeatNumbers"`
	NewTripID      string   `json:"NewTripId"`
	NewSeatNumbers []string `json:"NewSeatNumbers"`
}

func (p BookingEvents) publish(ctx context.Context, queue string, ev any) error {
	if p.MQ == nil {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}
	if err := p.MQ.Publish(ctx, queue, body); err != nil {
		return fmt.Errorf("publish %s: %w", queue, err)
	}
	return nil
}

// Created announces a new (pending or confirmed) seat claim.
func (p BookingEvents) Created(ctx context.Context, ev BookingEvent) error {
	return p.publish(ctx, QueueBookingCreated, ev)
}

// Cancelled announces released seats after a failed or expired payment.
func (p BookingEvents) Cancelled(ctx context.Context, ev BookingEvent) error {
	return p.publish(ctx, QueueBookingCancelled, ev)
}

// Changed announces a booking moved to a different trip or seat set.
func (p BookingEvents) Changed(ctx context.Context, ev SeatChangeEvent) error {
	return p.publish(ctx, QueueBookingChanged, ev)
}
