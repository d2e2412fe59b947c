package internal

import (
	"time"
)

type Config struct {
	Host      string `env:"HOST,default=0.0.0.0"`
	Port      int    `env:"PORT,default=8080"`
	DebugPort int    `env:"DEBUG_PORT,default=8081"`
	LogLevel  string `env:"LOG_LEVEL,default=INFO"`

	BufferSize           int           `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=1s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=5s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	LatencyThreshold     time.Duration `env:"LATENCY_THRESHOLD,default=500ms"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=32"`

	MaxMessageSize int64         `env:"MAX_MESSAGE_SIZE,default=4096"`
	WriteWait      time.Duration `env:"WRITE_WAIT,default=10s"`
	PongWait       time.Duration `env:"PONG_WAIT,default=60s"`
	PingInterval   time.Duration `env:"PING_INTERVAL,default=54s"`
}
