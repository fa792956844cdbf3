package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/internal/backend"
	inErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/listing/internal/otel"
	"github.com/Alturino/storefront/listing/pkg/filter"
	"github.com/Alturino/storefront/listing/pkg/pagination"
	"github.com/Alturino/storefront/listing/pkg/request"
	"github.com/Alturino/storefront/listing/pkg/response"
)

const (
	ViewCatalog       = "catalog"
	ViewCategory      = "category"
	ViewCategories    = "categories"
	ViewAdminProducts = "admin-products"
	ViewAdminOrders   = "admin-orders"
	ViewProfileOrders = "profile-orders"
)

const cacheKeyPrefix = "listing:"

type Fetcher interface {
	Get(c context.Context, path string, query url.Values) (backend.Envelope, error)
}

// ListingService fetches source collections from the backend and paginates
// them. Public catalog collections are cached in redis when a client is set.
type ListingService struct {
	backend Fetcher
	cache   *redis.Client
	ttl     time.Duration
}

func NewListingService(backend Fetcher, cache *redis.Client, ttl time.Duration) *ListingService {
	return &ListingService{backend: backend, cache: cache, ttl: ttl}
}

func (svc *ListingService) Products(c context.Context, q request.ListQuery) (response.List[backend.Product], error) {
	c, span := otel.Tracer.Start(c, "ListingService Products")
	defer span.End()

	path, query := backend.PathProductGetAll, url.Values{}
	if q.Search != "" {
		path = backend.PathProductSearch
		query.Set("searchValue", q.Search)
	}
	products, err := cachedList(c, svc, path, query, func(e backend.Envelope) []backend.Product { return e.ProductList })
	if err != nil {
		inErrors.HandleError(err, span)
		return response.List[backend.Product]{}, err
	}

	filterKey := ""
	if q.Search != "" {
		filterKey = "search=" + q.Search
	}
	return render(c, ViewCatalog, products, pagination.CatalogPageSize, q, filterKey, nil), nil
}

func (svc *ListingService) CategoryProducts(c context.Context, categoryID int64, q request.ListQuery) (response.List[backend.Product], error) {
	c, span := otel.Tracer.Start(c, "ListingService CategoryProducts", trace.WithAttributes(attribute.Int64(log.KeyCategoryID, categoryID)))
	defer span.End()

	path := backend.PathProductGetByCategory + strconv.FormatInt(categoryID, 10)
	products, err := cachedList(c, svc, path, nil, func(e backend.Envelope) []backend.Product { return e.ProductList })
	if err != nil {
		inErrors.HandleError(err, span)
		return response.List[backend.Product]{}, err
	}

	filterKey := "category=" + strconv.FormatInt(categoryID, 10)
	return render(c, ViewCategory, products, pagination.CategoryPageSize, q, filterKey, nil), nil
}

func (svc *ListingService) Categories(c context.Context, q request.ListQuery) (response.List[backend.Category], error) {
	c, span := otel.Tracer.Start(c, "ListingService Categories")
	defer span.End()

	categories, err := cachedList(c, svc, backend.PathCategoryGetAll, nil, func(e backend.Envelope) []backend.Category { return e.CategoryList })
	if err != nil {
		inErrors.HandleError(err, span)
		return response.List[backend.Category]{}, err
	}
	return render(c, ViewCategories, categories, pagination.CategoriesPageSize, q, "", nil), nil
}

func (svc *ListingService) AdminProducts(c context.Context, q request.ListQuery) (response.List[backend.Product], error) {
	c, span := otel.Tracer.Start(c, "ListingService AdminProducts")
	defer span.End()

	products, err := fetchList(c, svc.backend, backend.PathProductGetAll, nil, func(e backend.Envelope) []backend.Product { return e.ProductList })
	if err != nil {
		inErrors.HandleError(err, span)
		return response.List[backend.Product]{}, err
	}
	return render(c, ViewAdminProducts, products, pagination.AdminProductsPageSize, q, "", nil), nil
}

// AdminOrders fetches all order items, or only those in q.SearchStatus, and
// then narrows them locally to q.Status.
func (svc *ListingService) AdminOrders(c context.Context, q request.ListQuery) (response.List[backend.OrderItem], error) {
	c, span := otel.Tracer.Start(c, "ListingService AdminOrders")
	defer span.End()

	searchStatus, err := backend.ParseOrderStatus(q.SearchStatus)
	if err != nil {
		inErrors.HandleError(err, span)
		return response.List[backend.OrderItem]{}, err
	}
	status, err := backend.ParseOrderStatus(q.Status)
	if err != nil {
		inErrors.HandleError(err, span)
		return response.List[backend.OrderItem]{}, err
	}

	query := url.Values{}
	if searchStatus != "" {
		query.Set("status", string(searchStatus))
	}
	orders, err := fetchList(c, svc.backend, backend.PathOrderFilter, query, func(e backend.Envelope) []backend.OrderItem { return e.OrderItemList })
	if err != nil {
		inErrors.HandleError(err, span)
		return response.List[backend.OrderItem]{}, err
	}

	filterKey := ""
	if status != "" || searchStatus != "" {
		filterKey = fmt.Sprintf("status=%s&searchStatus=%s", status, searchStatus)
	}
	return render(c, ViewAdminOrders, orders, pagination.AdminOrdersPageSize, q, filterKey, filter.ByStatus(status)), nil
}

func (svc *ListingService) ProfileOrders(c context.Context, q request.ListQuery) (response.List[backend.OrderItem], error) {
	c, span := otel.Tracer.Start(c, "ListingService ProfileOrders")
	defer span.End()

	orders, err := fetchList(c, svc.backend, backend.PathUserMyInfo, nil, func(e backend.Envelope) []backend.OrderItem {
		if e.User == nil {
			return nil
		}
		return e.User.OrderItemList
	})
	if err != nil {
		inErrors.HandleError(err, span)
		return response.List[backend.OrderItem]{}, err
	}
	return render(c, ViewProfileOrders, orders, pagination.ProfileOrdersPageSize, q, "", nil), nil
}

func render[T any](
	c context.Context,
	view string,
	source []T,
	itemsPerPage int,
	q request.ListQuery,
	filterKey string,
	predicate pagination.Predicate[T],
) response.List[T] {
	v := pagination.NewView[T](itemsPerPage)
	v.SetFilter(filterKey, predicate)
	v.SetPage(q.EffectivePage(filterKey))
	page := v.Render(source)

	metrics.ListingPages.WithLabelValues(view).Inc()
	zerolog.Ctx(c).Debug().
		Str(log.KeyTag, "ListingService render").
		Str(log.KeyView, view).
		Str(log.KeyFilterKey, filterKey).
		Int(log.KeyPage, page.Page).
		Int(log.KeyTotalPages, page.TotalPages).
		Msg("rendered page")

	return response.NewList(page, itemsPerPage, filterKey)
}

func fetchList[T any](
	c context.Context,
	fetcher Fetcher,
	path string,
	query url.Values,
	pluck func(backend.Envelope) []T,
) ([]T, error) {
	envelope, err := fetcher.Get(c, path, query)
	if err != nil {
		return nil, fmt.Errorf("failed fetching %s with error=%w", path, err)
	}
	list := pluck(envelope)
	if list == nil {
		list = []T{}
	}
	return list, nil
}

func cacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return cacheKeyPrefix + path
	}
	return cacheKeyPrefix + path + "?" + query.Encode()
}

// cachedList serves the collection from redis when present. Cache failures
// are logged and fall through to the backend.
func cachedList[T any](
	c context.Context,
	svc *ListingService,
	path string,
	query url.Values,
	pluck func(backend.Envelope) []T,
) ([]T, error) {
	if svc.cache == nil {
		return fetchList(c, svc.backend, path, query, pluck)
	}

	key := cacheKey(path, query)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ListingService cachedList").
		Str(log.KeyCacheKey, key).
		Logger()

	cached, err := svc.cache.Get(c, key).Bytes()
	switch {
	case err == nil:
		list := []T{}
		if err := json.Unmarshal(cached, &list); err == nil {
			logger.Trace().Msg("cache hit")
			return list, nil
		}
		logger.Warn().Msg("discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
		logger.Trace().Msg("cache miss")
	default:
		logger.Warn().Err(err).Msg("failed reading cache")
	}

	list, err := fetchList(c, svc.backend, path, query, pluck)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(list)
	if err != nil {
		logger.Warn().Err(err).Msg("failed encoding cache entry")
		return list, nil
	}
	if err := svc.cache.Set(c, key, encoded, svc.ttl).Err(); err != nil {
		logger.Warn().Err(err).Msg("failed writing cache")
	}
	return list, nil
}
