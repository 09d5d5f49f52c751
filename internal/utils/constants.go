package utils

// HTTP Header Constants
const (
	HeaderContentType = "Content-Type"
	HeaderUserAgent   = "User-Agent"
	HeaderAccept      = "Accept"

	// Request tracking
	HeaderRequestID    = "X-Request-ID"
	HeaderResponseTime = "X-Response-Time"

	// Client IP Headers (priority order)
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderXRealIP       = "X-Real-IP"

	// Session Headers
	HeaderAuthorization = "Authorization"
	HeaderUserID        = "X-User-ID"
	HeaderUserEmail     = "X-User-Email"

	// CORS Headers
	HeaderAccessControlAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowMethods = "Access-Control-Allow-Methods"
	HeaderAccessControlAllowHeaders = "Access-Control-Allow-Headers"
)

// Content Type Constants
const (
	ContentTypeJSON     = "application/json"
	ContentTypeJSONUTF8 = "application/json; charset=utf-8"
)

// Service Values
const (
	ServiceName = "Content-Dashboard/1.0"
	UserAgent   = "Content-Dashboard-Client/1.0"
)

// CORS Values
const (
	CORSAllowOriginAll  = "*"
	CORSAllowMethodsAll = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	CORSAllowHeadersStd = "Accept, Content-Type, Authorization, X-Request-ID, X-User-ID, X-User-Email"
)
