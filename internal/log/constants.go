package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyConfig             = "config"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyPathValues         = "pathValues"
	KeyQueryValues        = "queryValues"
	KeyAuthToken          = "authToken"
	KeyUserID             = "userId"
	KeyRole               = "role"
	KeyCacheKey           = "cacheKey"
	KeyJsonCache          = "jsonCache"
	KeySessionID          = "sessionId"
	KeySlot               = "slot"
	KeyMirrorDriver       = "mirrorDriver"
	KeyCart               = "cart"
	KeyCartItems          = "cartItems"
	KeyCartItemsCount     = "cartItemsCount"
	KeyCartTotalPrice     = "cartTotalPrice"
	KeyCommand            = "command"
	KeyProduct            = "product"
	KeyProductID          = "productId"
	KeyOrderRequest       = "orderRequest"
	KeyView               = "view"
	KeyPage               = "page"
	KeyTotalPages         = "totalPages"
	KeyFilterKey          = "filterKey"
	KeySearch             = "search"
	KeyStatus             = "status"
	KeyCategoryID         = "categoryId"
	KeyBackendURL         = "backendUrl"
	KeyBackendStatus      = "backendStatus"
	KeyDbURL              = "dbUrl"
	KeyRequestProcessedAt = "requestProcessedAt"
)
