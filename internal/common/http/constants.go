package http

const (
	HeaderContentType = "Content-Type"
	HeaderValueJson   = "application/json"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)
