// Package cache wraps the Redis keys used by the booking flow: advisory seat
// holds and the booking expiry timer. The database unique key stays the sole
// arbiter of seat ownership; holds only cut down on doomed submissions.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	seatHoldPrefix   = "booking:"
	expireKeyPrefix  = "booking_expire:"
	expiredEventChan = "__keyevent@0__:expired"
)

type Holds struct {
	Client *redis.Client
}

func seatKey(tripID, seat string) string {
	return seatHoldPrefix + tripID + ":" + seat
}

// AnyHeld reports the first seat of the set currently held by another
// booking, or "" when all are free.
func (h Holds) AnyHeld(ctx context.Context, tripID string, seats []string) (string, error) {
	for _, seat := range seats {
		n, err := h.Client.Exists(ctx, seatKey(tripID, seat)).Result()
		if err != nil {
			return "", err
		}
		if n > 0 {
			return seat, nil
		}
	}
	return "", nil
}

// HoldSeats marks the seats as held by bookingID for the payment window.
func (h Holds) HoldSeats(ctx context.Context, tripID, bookingID string, seats []string, ttl time.Duration) error {
	for _, seat := range seats {
		if err := h.Client.Set(ctx, seatKey(tripID, seat), bookingID, ttl).Err(); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseSeats drops the holds, e.g. after a failed payment.
func (h Holds) ReleaseSeats(ctx context.Context, tripID string, seats []string) error {
	keys := make([]string, 0, len(seats))
	for _, seat := range seats {
		keys = append(keys, seatKey(tripID, seat))
	}
	if len(keys) == 0 {
		return nil
	}
	return h.Client.Del(ctx, keys...).Err()
}

// ArmExpiry starts the booking's payment countdown. When the key expires the
// listener cancels the still-pending booking.
func (h Holds) ArmExpiry(ctx context.Context, bookingID string, ttl time.Duration) error {
	return h.Client.Set(ctx, expireKeyPrefix+bookingID, "1", ttl).Err()
}

// DisarmExpiry clears the countdown once the payment reached a terminal
// state through the IPN.
func (h Holds) DisarmExpiry(ctx context.Context, bookingID string) error {
	return h.Client.Del(ctx, expireKeyPrefix+bookingID).Err()
}
