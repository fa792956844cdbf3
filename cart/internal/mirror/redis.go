package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/internal/otel"
	inErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
)

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Read(c context.Context, slot Slot) ([]byte, error) {
	c, span := otel.Tracer.Start(c, "Redis Read")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Redis Read").Str(log.KeySlot, slot.String()).Logger()

	payload, err := r.client.Get(c, slot.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmptySlot
	}
	if err != nil {
		err = fmt.Errorf("failed getting slot=%s with error=%w", slot, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return payload, nil
}

func (r *Redis) Write(c context.Context, slot Slot, payload []byte) error {
	c, span := otel.Tracer.Start(c, "Redis Write")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Redis Write").Str(log.KeySlot, slot.String()).Logger()

	if err := r.client.Set(c, slot.String(), payload, 0).Err(); err != nil {
		err = fmt.Errorf("failed setting slot=%s with error=%w", slot, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

func (r *Redis) Wipe(c context.Context, slot Slot) error {
	c, span := otel.Tracer.Start(c, "Redis Wipe")
	defer span.End()

	if err := r.client.Del(c, slot.String()).Err(); err != nil {
		err = fmt.Errorf("failed deleting slot=%s with error=%w", slot, err)
		inErrors.HandleError(err, span)
		return err
	}
	return nil
}
