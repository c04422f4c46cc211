package common

import (
	"context"
	"errors"
	"fmt"
	"pbs/src/lib"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const handoffTokenTTL = 10 * time.Minute

var ErrHandoffTokenInvalid = errors.New("handoff token is invalid or expired")

// IssueHandoffToken mints a short-lived single-use token binding a gallery
// handoff to a booking. Tokens live in redis with a TTL, so they survive
// process restarts and expire without a sweeper.
func IssueHandoffToken(ctx context.Context, bookingId uint) (string, error) {
	token := uuid.NewString()
	rd := lib.GetRedisClient()
	key := fmt.Sprintf("handoff:%s", token)
	if err := rd.SetEx(ctx, key, fmt.Sprint(bookingId), handoffTokenTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// RedeemHandoffToken consumes a token and returns the booking it was issued
// for. GetDel makes redemption single-use.
func RedeemHandoffToken(ctx context.Context, token string) (uint, error) {
	rd := lib.GetRedisClient()
	key := fmt.Sprintf("handoff:%s", token)
	val, err := rd.GetDel(ctx, key).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrHandoffTokenInvalid
		}
		return 0, err
	}
	return uint(val), nil
}
