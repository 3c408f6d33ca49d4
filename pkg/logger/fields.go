package logger

const (
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	FieldUserID     = "user_id"
	FieldAuthScheme = "auth_scheme"

	FieldService = "service"
	FieldJob     = "job"
)
