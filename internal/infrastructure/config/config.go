package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8081"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo       MongoConfig
	Redis       RedisConfig
	Recognition RecognitionConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=attendance_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// RecognitionConfig controls the staged face corpus and the external
// recognition worker launched per session.
type RecognitionConfig struct {
	// TempFacesDir is the staging directory the worker reads known faces from.
	TempFacesDir string `env:"FACES_TEMP_DIR,    default=temp_faces"`
	// WorkerCommand is the interpreter used to launch the worker script.
	WorkerCommand string `env:"WORKER_COMMAND,   default=python"`
	// WorkerScript is the path of the recognition worker entry point.
	WorkerScript string `env:"WORKER_SCRIPT,     default=python-client/attendance_camera.py"`
	// CallbackURL is the endpoint the worker posts recognized faces to.
	CallbackURL string `env:"MARK_CALLBACK_URL,  default=http://localhost:8081/mark"`
	// StopGracePeriod bounds the wait between SIGTERM and SIGKILL on stop.
	StopGracePeriod time.Duration `env:"WORKER_STOP_GRACE, default=5s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
