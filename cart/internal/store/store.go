package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/cart/internal/mirror"
	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/internal/reducer"
	"github.com/Alturino/storefront/cart/pkg/response"
	inErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
)

type Listener func(response.Cart)

// Store owns one cart and its durable mirror slot. Dispatch is serialized:
// reduce, persist and notify complete before the next command starts.
// Listeners may read Snapshot but must not Dispatch.
type Store struct {
	dispatchMu sync.Mutex

	stateMu sync.RWMutex
	state   response.Cart

	listenersMu sync.Mutex
	listeners   map[uint64]Listener
	nextID      uint64

	mirror mirror.Mirror
	slot   mirror.Slot
}

// New loads the slot once. A missing, unreadable or invalid payload starts
// the cart empty.
func New(c context.Context, m mirror.Mirror, slot mirror.Slot) *Store {
	return &Store{
		state:     Load(c, m, slot),
		listeners: map[uint64]Listener{},
		mirror:    m,
		slot:      slot,
	}
}

// Load reads the cart persisted in slot without creating a Store.
func Load(c context.Context, m mirror.Mirror, slot mirror.Slot) response.Cart {
	c, span := otel.Tracer.Start(c, "Store Load", trace.WithAttributes(attribute.String(log.KeySlot, slot.String())))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store Load").
		Str(log.KeySlot, slot.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart from mirror").Logger()
	logger.Debug().Msg("loading cart from mirror")
	payload, err := m.Read(c, slot)
	if errors.Is(err, mirror.ErrEmptySlot) {
		logger.Debug().Msg("mirror slot is empty starting with empty cart")
		return response.Cart{}
	}
	if err != nil {
		err = fmt.Errorf("failed reading mirror with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg("starting with empty cart")
		return response.Cart{}
	}

	cart, err := mirror.Decode(payload)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg("starting with empty cart")
		return response.Cart{}
	}
	logger.Debug().Int(log.KeyCartItemsCount, len(cart)).Msg("loaded cart from mirror")

	return cart
}

func (s *Store) Slot() mirror.Slot {
	return s.slot
}

func (s *Store) Snapshot() response.Cart {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Dispatch applies cmd and returns the resulting snapshot. The state only
// advances once the new snapshot is persisted. When the mirror write fails
// the failure is logged and counted and the previous snapshot is returned.
func (s *Store) Dispatch(c context.Context, cmd reducer.Command) response.Cart {
	return s.DispatchBatch(c, cmd)
}

// DispatchBatch folds cmds into one transition with a single mirror write
// and a single notification.
func (s *Store) DispatchBatch(c context.Context, cmds ...reducer.Command) response.Cart {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	names := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		name := "none"
		if cmd != nil {
			name = cmd.Name()
		}
		names = append(names, name)
	}
	c, span := otel.Tracer.Start(c, "Store Dispatch", trace.WithAttributes(attribute.StringSlice(log.KeyCommand, names)))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store Dispatch").
		Str(log.KeySlot, s.slot.String()).
		Strs(log.KeyCommand, names).
		Logger()

	prev := s.Snapshot()
	next := prev
	for i, cmd := range cmds {
		next = reducer.Reduce(next, cmd)
		metrics.CartCommands.WithLabelValues(names[i]).Inc()
	}

	logger = logger.With().Str(log.KeyProcess, "persisting cart").Logger()
	payload, err := mirror.Encode(next)
	if err == nil {
		err = s.mirror.Write(c, s.slot, payload)
	}
	metrics.ObserveMirrorWrite(err)
	if err != nil {
		err = fmt.Errorf("failed persisting cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg("keeping previous cart")
		return prev
	}

	s.stateMu.Lock()
	s.state = next
	s.stateMu.Unlock()

	for _, listener := range s.snapshotListeners() {
		listener(next)
	}

	logger.Debug().
		Int(log.KeyCartItemsCount, len(next)).
		Str(log.KeyCartTotalPrice, next.TotalPrice().String()).
		Msg("dispatched command")

	return next
}

// Subscribe registers l for every snapshot produced after this call.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			delete(s.listeners, id)
		})
	}
}

func (s *Store) snapshotListeners() []Listener {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	return listeners
}
