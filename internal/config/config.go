package config

import (
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"acme_db"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASS" default:"1234"`
}

type svcConfig struct {
	Address         string   `envconfig:"IMPORTER_ADDRESS" default:":8080"`
	MetricsAddress  string   `envconfig:"IMPORTER_METRICS_ADDRESS" default:":8081"`
	BaseUrl         string   `envconfig:"IMPORTER_BASE_URL" default:"http://localhost:8080"`
	UploadDir       string   `envconfig:"IMPORTER_UPLOAD_DIR" default:"/tmp/uploads"`
	LogLevel        string   `envconfig:"IMPORTER_LOG_LEVEL" default:"info"`
	MigrationFolder string   `envconfig:"IMPORTER_MIGRATIONS_FOLDER" default:""`
	CorsOrigins     []string `envconfig:"IMPORTER_CORS_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a config suitable for tests: an in-memory sqlite
// database and a throwaway upload folder.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{
			Type: "sqlite",
			Name: "file::memory:?cache=shared",
		},
		Service: &svcConfig{
			Address:   ":8080",
			BaseUrl:   "http://localhost:8080",
			UploadDir: "/tmp/uploads",
			LogLevel:  "info",
		},
	}
}
