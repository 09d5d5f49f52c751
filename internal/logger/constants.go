package logger

// ComponentNames defines standardized values for the entry context field
var ComponentNames = struct {
	APIClient      string
	ErrorHandler   string
	CircuitBreaker string
	Performance    string
	GlobalHandler  string

	Logger     string
	Config     string
	Database   string
	Monitoring string
	Server     string
	Handler    string
	Middleware string
	Auth       string
	Seed       string
}{
	APIClient:      "ApiClient",
	ErrorHandler:   "ApiErrorHandler",
	CircuitBreaker: "CircuitBreaker",
	Performance:    "Performance",
	GlobalHandler:  "GlobalErrorHandler",

	Logger:     "Logger",
	Config:     "Config",
	Database:   "Database",
	Monitoring: "Monitoring",
	Server:     "Server",
	Handler:    "Handler",
	Middleware: "Middleware",
	Auth:       "Auth",
	Seed:       "Seed",
}
