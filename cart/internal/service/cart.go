package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/Alturino/storefront/cart/internal/mirror"
	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/internal/reducer"
	"github.com/Alturino/storefront/cart/internal/store"
	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/backend"
	inErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
)

type OrderPlacer interface {
	Post(c context.Context, path string, body any) (backend.Envelope, error)
}

// CartService keeps one store per cart session that has been written to.
// Stores are created on first dispatch from the session's mirror slot. Reads
// of sessions without a live store go straight to the mirror.
type CartService struct {
	mirror  mirror.Mirror
	prefix  string
	backend OrderPlacer

	mu     sync.RWMutex
	stores map[uuid.UUID]*store.Store
	group  singleflight.Group
}

func NewCartService(m mirror.Mirror, slotPrefix string, backend OrderPlacer) *CartService {
	return &CartService{
		mirror:  m,
		prefix:  slotPrefix,
		backend: backend,
		stores:  map[uuid.UUID]*store.Store{},
	}
}

func (svc *CartService) Store(c context.Context, sessionID uuid.UUID) *store.Store {
	svc.mu.RLock()
	s, ok := svc.stores[sessionID]
	svc.mu.RUnlock()
	if ok {
		return s
	}

	v, _, _ := svc.group.Do(sessionID.String(), func() (interface{}, error) {
		svc.mu.RLock()
		s, ok := svc.stores[sessionID]
		svc.mu.RUnlock()
		if ok {
			return s, nil
		}

		s = store.New(c, svc.mirror, mirror.NewSlot(svc.prefix, sessionID))
		svc.mu.Lock()
		svc.stores[sessionID] = s
		svc.mu.Unlock()
		return s, nil
	})
	return v.(*store.Store)
}

func (svc *CartService) GetCart(c context.Context, sessionID uuid.UUID) response.Cart {
	c, span := otel.Tracer.Start(c, "CartService GetCart", trace.WithAttributes(attribute.String(log.KeySessionID, sessionID.String())))
	defer span.End()

	svc.mu.RLock()
	s, ok := svc.stores[sessionID]
	svc.mu.RUnlock()
	if ok {
		return s.Snapshot()
	}
	return store.Load(c, svc.mirror, mirror.NewSlot(svc.prefix, sessionID))
}

func (svc *CartService) Dispatch(c context.Context, sessionID uuid.UUID, cmd reducer.Command) response.Cart {
	c, span := otel.Tracer.Start(c, "CartService Dispatch", trace.WithAttributes(attribute.String(log.KeySessionID, sessionID.String())))
	defer span.End()

	return svc.Store(c, sessionID).Dispatch(c, cmd)
}

// Checkout places an order for the cached cart contents. Once the backend
// confirms with status 200 the ordered quantities are taken out of the cart,
// so items added while the order was in flight stay in the cart.
func (svc *CartService) Checkout(c context.Context, sessionID uuid.UUID) (backend.Envelope, error) {
	c, span := otel.Tracer.Start(c, "CartService Checkout", trace.WithAttributes(attribute.String(log.KeySessionID, sessionID.String())))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Checkout").
		Str(log.KeySessionID, sessionID.String()).
		Logger()

	s := svc.Store(c, sessionID)
	cart := s.Snapshot()
	if len(cart) == 0 {
		inErrors.HandleError(inErrors.ErrEmptyCart, span)
		logger.Error().Err(inErrors.ErrEmptyCart).Msg(inErrors.ErrEmptyCart.Error())
		return backend.Envelope{}, inErrors.ErrEmptyCart
	}

	logger = logger.With().Str(log.KeyProcess, "building order request").Logger()
	logger.Info().Msg("building order request")
	order := NewOrderRequest(cart)
	logger = logger.With().Any(log.KeyOrderRequest, order).Logger()
	logger.Info().Msg("built order request")

	logger = logger.With().Str(log.KeyProcess, "placing order").Logger()
	logger.Info().Msg("placing order")
	envelope, err := svc.backend.Post(c, backend.PathOrderCreate, order)
	if err != nil {
		err = fmt.Errorf("failed placing order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return backend.Envelope{}, err
	}
	if envelope.Status != http.StatusOK {
		err = fmt.Errorf("%w: status=%d message=%s", inErrors.ErrBackendRejected, envelope.Status, envelope.Message)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return envelope, err
	}
	logger.Info().Msg("placed order")

	logger = logger.With().Str(log.KeyProcess, "settling cart").Logger()
	logger.Info().Msg("settling cart")
	remaining := s.DispatchBatch(c, SettleCommands(cart)...)
	logger.Info().Int(log.KeyCartItemsCount, len(remaining)).Msg("settled cart")

	return envelope, nil
}

// SettleCommands removes exactly the quantities in ordered from a cart.
func SettleCommands(ordered response.Cart) []reducer.Command {
	cmds := make([]reducer.Command, 0, ordered.TotalQuantity())
	for _, item := range ordered {
		for range item.Quantity {
			cmds = append(cmds, reducer.Decrement{ID: item.ID})
		}
	}
	return cmds
}

func NewOrderRequest(cart response.Cart) backend.OrderRequest {
	items := make([]backend.OrderItemRequest, 0, len(cart))
	for _, item := range cart {
		items = append(items, backend.OrderItemRequest{
			ProductID: item.ID.String(),
			Quantity:  item.Quantity,
		})
	}
	return backend.OrderRequest{TotalPrice: cart.TotalPrice(), Items: items}
}
