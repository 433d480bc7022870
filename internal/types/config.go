package types

type RunMode string

const (
	// ModeLocal runs the API server with in-process collaborators
	ModeLocal RunMode = "local"
	// ModeAPI runs just the API server
	ModeAPI RunMode = "api"
	// ModeAWSLambdaAPI runs the API server behind an AWS Lambda proxy
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

type PubSubBackend string

const (
	PubSubBackendMemory PubSubBackend = "memory"
	PubSubBackendKafka  PubSubBackend = "kafka"
)

type RateLimitBackend string

const (
	RateLimitBackendMemory RateLimitBackend = "memory"
	RateLimitBackendRedis  RateLimitBackend = "redis"
)
