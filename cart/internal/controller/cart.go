package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/internal/reducer"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/backend"
	inErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/validate"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/middleware"
)

type CartController struct {
	service  *service.CartService
	validate *validator.Validate
}

func AttachCartController(mux *mux.Router, service *service.CartService, secretKey string) {
	controller := CartController{service: service, validate: validate.New()}

	router := mux.PathPrefix("/carts").Subrouter()
	router.HandleFunc("/{sessionId}", controller.GetCart).Methods(http.MethodGet)
	router.HandleFunc("/{sessionId}", controller.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/{sessionId}/items", controller.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/{sessionId}/items/increment", controller.IncrementItem).Methods(http.MethodPost)
	router.HandleFunc("/{sessionId}/items/{productId}/decrement", controller.DecrementItem).Methods(http.MethodPost)
	router.HandleFunc("/{sessionId}/items/{productId}", controller.RemoveItem).Methods(http.MethodDelete)
	router.Handle(
		"/{sessionId}/checkout",
		middleware.Auth(secretKey)(http.HandlerFunc(controller.Checkout)),
	).Methods(http.MethodPost)
}

func sessionIDFromPath(r *http.Request) (uuid.UUID, error) {
	sessionID, err := uuid.Parse(mux.Vars(r)["sessionId"])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", inErrors.ErrInvalidSession, err)
	}
	return sessionID, nil
}

func writeCart(w http.ResponseWriter, r *http.Request, message string, cart response.Cart) {
	inHttp.WriteSuccess(r.Context(), w, message, map[string]interface{}{
		"cart": response.NewView(cart),
	})
}

func (t CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController GetCart").Logger()

	sessionID, err := sessionIDFromPath(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger = logger.With().Str(log.KeySessionID, sessionID.String()).Logger()
	c = logger.WithContext(c)

	cart := t.service.GetCart(c, sessionID)
	logger.Info().Int(log.KeyCartItemsCount, len(cart)).Msg("found cart")

	writeCart(w, r.WithContext(c), "successfully found cart", cart)
}

func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	t.dispatchProduct(w, r, "CartController AddItem", func(p request.Product) reducer.Command {
		return reducer.Add{Product: p}
	})
}

func (t CartController) IncrementItem(w http.ResponseWriter, r *http.Request) {
	t.dispatchProduct(w, r, "CartController IncrementItem", func(p request.Product) reducer.Command {
		return reducer.Increment{Product: p}
	})
}

func (t CartController) dispatchProduct(
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	command func(request.Product) reducer.Command,
) {
	c, span := otel.Tracer.Start(r.Context(), tag)
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, tag).Logger()

	sessionID, err := sessionIDFromPath(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger = logger.With().Str(log.KeySessionID, sessionID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Debug().Msg("decoding request body")
	product := request.Product{}
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Debug().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Debug().Msg("validating request body")
	if err := t.validate.StructCtx(c, product); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger = logger.With().Str(log.KeyProductID, product.ID.String()).Logger()
	logger.Debug().Msg("validated request body")

	cmd := command(product)
	c = logger.WithContext(c)
	cart := t.service.Dispatch(c, sessionID, cmd)
	logger.Info().Str(log.KeyCommand, cmd.Name()).Int(log.KeyCartItemsCount, len(cart)).Msg("dispatched command")

	writeCart(w, r.WithContext(c), fmt.Sprintf("successfully applied %s", cmd.Name()), cart)
}

func (t CartController) DecrementItem(w http.ResponseWriter, r *http.Request) {
	t.dispatchProductID(w, r, "CartController DecrementItem", func(id response.ProductID) reducer.Command {
		return reducer.Decrement{ID: id}
	})
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	t.dispatchProductID(w, r, "CartController RemoveItem", func(id response.ProductID) reducer.Command {
		return reducer.Remove{ID: id}
	})
}

func (t CartController) dispatchProductID(
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	command func(response.ProductID) reducer.Command,
) {
	c, span := otel.Tracer.Start(r.Context(), tag)
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, tag).Logger()

	sessionID, err := sessionIDFromPath(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	productID := response.ProductID(mux.Vars(r)["productId"])
	logger = logger.With().
		Str(log.KeySessionID, sessionID.String()).
		Str(log.KeyProductID, productID.String()).
		Logger()

	cmd := command(productID)
	c = logger.WithContext(c)
	cart := t.service.Dispatch(c, sessionID, cmd)
	logger.Info().Str(log.KeyCommand, cmd.Name()).Int(log.KeyCartItemsCount, len(cart)).Msg("dispatched command")

	writeCart(w, r.WithContext(c), fmt.Sprintf("successfully applied %s", cmd.Name()), cart)
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController ClearCart").Logger()

	sessionID, err := sessionIDFromPath(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger = logger.With().Str(log.KeySessionID, sessionID.String()).Logger()
	c = logger.WithContext(c)

	cart := t.service.Dispatch(c, sessionID, reducer.Clear{})
	logger.Info().Msg("cleared cart")

	writeCart(w, r.WithContext(c), "successfully cleared cart", cart)
}

func (t CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController Checkout").Logger()

	sessionID, err := sessionIDFromPath(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger = logger.With().Str(log.KeySessionID, sessionID.String()).Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "checking out cart").Logger()
	logger.Info().Msg("checking out cart")
	envelope, err := t.service.Checkout(c, sessionID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode, message := checkoutFailure(err, envelope)
		inHttp.WriteFailed(c, w, statusCode, errors.New(message))
		return
	}
	logger.Info().Msg("checked out cart")

	inHttp.WriteSuccess(c, w, envelope.Message, map[string]interface{}{
		"cart": response.NewView(t.service.GetCart(c, sessionID)),
	})
}

func checkoutFailure(err error, envelope backend.Envelope) (int, string) {
	var backendErr *backend.Error
	switch {
	case errors.Is(err, inErrors.ErrEmptyCart):
		return http.StatusBadRequest, inErrors.ErrEmptyCart.Error()
	case errors.As(err, &backendErr):
		if backendErr.Temporary() {
			return http.StatusBadGateway, backendErr.Message
		}
		return backendErr.StatusCode, backendErr.Message
	case errors.Is(err, inErrors.ErrBackendRejected):
		if envelope.Message != "" {
			return http.StatusBadGateway, envelope.Message
		}
		return http.StatusBadGateway, inErrors.ErrBackendRejected.Error()
	default:
		return http.StatusBadGateway, err.Error()
	}
}
