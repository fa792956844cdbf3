package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/backend"
	inErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/validate"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/middleware"
	"github.com/Alturino/storefront/listing/internal/otel"
	"github.com/Alturino/storefront/listing/internal/service"
	"github.com/Alturino/storefront/listing/pkg/request"
	"github.com/Alturino/storefront/listing/pkg/response"
)

type ListingController struct {
	service  *service.ListingService
	validate *validator.Validate
}

func AttachListingController(
	mux *mux.Router,
	service *service.ListingService,
	secretKey string,
	roles middleware.RoleResolver,
) {
	controller := ListingController{service: service, validate: validate.New()}

	mux.HandleFunc("/products", controller.Products).Methods(http.MethodGet)
	mux.HandleFunc("/categories", controller.Categories).Methods(http.MethodGet)
	mux.HandleFunc("/categories/{categoryId}/products", controller.CategoryProducts).Methods(http.MethodGet)

	admin := mux.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Admin(secretKey, roles))
	admin.HandleFunc("/products", controller.AdminProducts).Methods(http.MethodGet)
	admin.HandleFunc("/orders", controller.AdminOrders).Methods(http.MethodGet)

	me := mux.PathPrefix("/users/me").Subrouter()
	me.Use(middleware.Auth(secretKey))
	me.HandleFunc("/orders", controller.ProfileOrders).Methods(http.MethodGet)
}

func (t ListingController) Products(w http.ResponseWriter, r *http.Request) {
	serveList(t, w, r, "ListingController Products", "products", t.service.Products)
}

func (t ListingController) Categories(w http.ResponseWriter, r *http.Request) {
	serveList(t, w, r, "ListingController Categories", "categories", t.service.Categories)
}

func (t ListingController) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	rawID := mux.Vars(r)["categoryId"]
	categoryID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		err = fmt.Errorf("failed parsing categoryId=%s with error=%w", rawID, err)
		zerolog.Ctx(r.Context()).Error().Str(log.KeyTag, "ListingController CategoryProducts").Err(err).Msg(err.Error())
		inHttp.WriteFailed(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	serveList(
		t,
		w,
		r,
		"ListingController CategoryProducts",
		"products",
		func(c context.Context, q request.ListQuery) (response.List[backend.Product], error) {
			return t.service.CategoryProducts(c, categoryID, q)
		},
	)
}

func (t ListingController) AdminProducts(w http.ResponseWriter, r *http.Request) {
	serveList(t, w, r, "ListingController AdminProducts", "products", t.service.AdminProducts)
}

func (t ListingController) AdminOrders(w http.ResponseWriter, r *http.Request) {
	serveList(t, w, r, "ListingController AdminOrders", "orders", t.service.AdminOrders)
}

func (t ListingController) ProfileOrders(w http.ResponseWriter, r *http.Request) {
	serveList(t, w, r, "ListingController ProfileOrders", "orders", t.service.ProfileOrders)
}

func serveList[T any](
	t ListingController,
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	name string,
	list func(context.Context, request.ListQuery) (response.List[T], error),
) {
	c, span := otel.Tracer.Start(r.Context(), tag)
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, tag).Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing query").Logger()
	logger.Debug().Msg("parsing query")
	q, err := request.ParseListQuery(r.URL.Query())
	if err == nil {
		err = t.validate.StructCtx(c, q)
	}
	if err != nil {
		err = fmt.Errorf("failed validating query with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger = logger.With().
		Int(log.KeyPage, q.Page).
		Str(log.KeyFilterKey, q.FilterKey).
		Str(log.KeySearch, q.Search).
		Str(log.KeyStatus, q.Status).
		Logger()
	logger.Debug().Msg("parsed query")

	logger = logger.With().Str(log.KeyProcess, "listing "+name).Logger()
	c = logger.WithContext(c)
	result, err := list(c, q)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode, message := listFailure(err)
		inHttp.WriteFailed(c, w, statusCode, errors.New(message))
		return
	}
	logger.Info().
		Int(log.KeyPage, result.Page).
		Int(log.KeyTotalPages, result.TotalPages).
		Msg("listed " + name)

	inHttp.WriteSuccess(c, w, "successfully listed "+name, map[string]interface{}{
		name: result,
	})
}

func listFailure(err error) (int, string) {
	var backendErr *backend.Error
	switch {
	case errors.Is(err, inErrors.ErrInvalidStatus):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &backendErr):
		if backendErr.Temporary() {
			return http.StatusBadGateway, backendErr.Message
		}
		return backendErr.StatusCode, backendErr.Message
	default:
		return http.StatusBadGateway, err.Error()
	}
}
