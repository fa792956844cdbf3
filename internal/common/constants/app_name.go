package constants

const (
	AppStorefront     = "storefront"
	AppCartService    = "cart-service"
	AppListingService = "listing-service"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

const (
	HeaderRequestID     = "X-Request-Id"
	HeaderAuthorization = "Authorization"
)
