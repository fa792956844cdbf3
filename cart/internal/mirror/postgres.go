package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/internal/otel"
	inErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
)

const (
	queryReadCart  = `select payload from cart_mirrors where session_id = $1`
	queryWriteCart = `insert into cart_mirrors (session_id, payload, updated_at)
values ($1, $2, now())
on conflict (session_id) do update set payload = excluded.payload, updated_at = now()`
	queryWipeCart = `delete from cart_mirrors where session_id = $1`
)

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	QueryRow(c context.Context, sql string, args ...any) pgx.Row
	Exec(c context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres keeps one row per cart session in cart_mirrors.
type Postgres struct {
	db DB
}

func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Read(c context.Context, slot Slot) ([]byte, error) {
	c, span := otel.Tracer.Start(c, "Postgres Read")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Postgres Read").Str(log.KeySlot, slot.String()).Logger()

	var payload string
	err := p.db.QueryRow(c, queryReadCart, slot.SessionID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmptySlot
	}
	if err != nil {
		err = fmt.Errorf("failed selecting slot=%s with error=%w", slot, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return []byte(payload), nil
}

func (p *Postgres) Write(c context.Context, slot Slot, payload []byte) error {
	c, span := otel.Tracer.Start(c, "Postgres Write")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Postgres Write").Str(log.KeySlot, slot.String()).Logger()

	if _, err := p.db.Exec(c, queryWriteCart, slot.SessionID, string(payload)); err != nil {
		err = fmt.Errorf("failed upserting slot=%s with error=%w", slot, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

func (p *Postgres) Wipe(c context.Context, slot Slot) error {
	c, span := otel.Tracer.Start(c, "Postgres Wipe")
	defer span.End()

	if _, err := p.db.Exec(c, queryWipeCart, slot.SessionID); err != nil {
		err = fmt.Errorf("failed deleting slot=%s with error=%w", slot, err)
		inErrors.HandleError(err, span)
		return err
	}
	return nil
}
