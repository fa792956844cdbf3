package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/Alturino/storefront/internal/common"
	"github.com/Alturino/storefront/internal/common/constants"
	inErrors "github.com/Alturino/storefront/internal/common/errors"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/otel"
)

const (
	PathProductGetAll        = "/product/get-all"
	PathProductSearch        = "/product/search"
	PathProductGetByCategory = "/product/get-by-category-id/"
	PathCategoryGetAll       = "/category/get-all"
	PathOrderCreate          = "/order/create"
	PathOrderFilter          = "/order/filter"
	PathUserMyInfo           = "/user/my-info"
)

// Client talks to the storefront backend. GETs with the same url and
// credentials are collapsed while in flight, and every call goes through
// a circuit breaker that only counts transport failures and 5xx answers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[Envelope]
	group      singleflight.Group
}

func NewClient(cfg config.Backend) *Client {
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.Timeout,
	}
	return NewClientWithHTTP(cfg, httpClient)
}

func NewClientWithHTTP(cfg config.Backend, httpClient *http.Client) *Client {
	failureRatio := cfg.BreakerFailureRatio
	if failureRatio <= 0 {
		failureRatio = 0.6
	}
	breaker := gobreaker.NewCircuitBreaker[Envelope](gobreaker.Settings{
		Name:        "backend",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= failureRatio
		},
		IsSuccessful: func(err error) bool {
			var backendErr *Error
			if errors.As(err, &backendErr) {
				return !backendErr.Temporary()
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		breaker:    breaker,
	}
}

// Role returns the role the backend holds for the caller's bearer token.
func (cl *Client) Role(c context.Context) (string, error) {
	envelope, err := cl.Get(c, PathUserMyInfo, nil)
	if err != nil {
		return "", err
	}
	if envelope.User == nil {
		return "", fmt.Errorf("failed resolving role with error=%w", inErrors.ErrEmptySubject)
	}
	return strings.ToUpper(envelope.User.Role), nil
}

func (cl *Client) Get(c context.Context, path string, query url.Values) (Envelope, error) {
	c, span := otel.Tracer.Start(c, "Client Get")
	defer span.End()

	target := cl.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	span.SetAttributes(attribute.String(log.KeyBackendURL, target))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client Get").
		Str(log.KeyBackendURL, target).
		Logger()

	token := common.BearerTokenFromContext(c)
	key := http.MethodGet + " " + target + " " + token
	v, err, shared := cl.group.Do(key, func() (interface{}, error) {
		return cl.do(c, http.MethodGet, target, nil)
	})
	if err != nil {
		err = fmt.Errorf("failed getting %s with error=%w", path, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Envelope{}, err
	}
	logger.Debug().Bool("shared", shared).Msg("got backend response")

	return v.(Envelope), nil
}

func (cl *Client) Post(c context.Context, path string, body any) (Envelope, error) {
	c, span := otel.Tracer.Start(c, "Client Post")
	defer span.End()

	target := cl.baseURL + path
	span.SetAttributes(attribute.String(log.KeyBackendURL, target))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client Post").
		Str(log.KeyBackendURL, target).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "encoding request body").Logger()
	payload, err := json.Marshal(body)
	if err != nil {
		err = fmt.Errorf("failed encoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Envelope{}, err
	}

	envelope, err := cl.do(c, http.MethodPost, target, payload)
	if err != nil {
		err = fmt.Errorf("failed posting %s with error=%w", path, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Envelope{}, err
	}
	return envelope, nil
}

func (cl *Client) do(c context.Context, method string, target string, payload []byte) (envelope Envelope, err error) {
	start := time.Now()
	defer func() { metrics.ObserveBackendRequest(method, start, err) }()
	return cl.breaker.Execute(func() (Envelope, error) {
		req, err := http.NewRequestWithContext(c, method, target, bytes.NewReader(payload))
		if err != nil {
			return Envelope{}, err
		}
		req.Header.Set(commonHttp.HeaderContentType, commonHttp.HeaderValueJson)
		if requestID := log.RequestIDFromContext(c); requestID != "" {
			req.Header.Set(constants.HeaderRequestID, requestID)
		}
		if token := common.BearerTokenFromContext(c); token != "" {
			req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
		}

		resp, err := cl.httpClient.Do(req)
		if err != nil {
			return Envelope{}, err
		}
		defer resp.Body.Close()

		envelope := Envelope{}
		decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			message := envelope.Message
			if message == "" {
				message = http.StatusText(resp.StatusCode)
			}
			return Envelope{}, &Error{StatusCode: resp.StatusCode, Message: message}
		}
		if decodeErr != nil {
			return Envelope{}, fmt.Errorf("failed decoding response with error=%w", decodeErr)
		}
		if envelope.Status >= 400 {
			return Envelope{}, &Error{StatusCode: envelope.Status, Message: envelope.Message}
		}

		trace.SpanFromContext(c).SetAttributes(attribute.Int(log.KeyBackendStatus, envelope.Status))
		return envelope, nil
	})
}
