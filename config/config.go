package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Auth      AuthConfig      `yaml:"auth"`
	Browse    BrowseConfig    `yaml:"browse"`
	Users     []SeedUser      `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type StorageConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type ExtractorConfig struct {
	APIURL         string `yaml:"api_url"`
	APIToken       string `yaml:"api_token"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type BrowseConfig struct {
	DocumentPageSize int `yaml:"document_page_size"`
	ContractPageSize int `yaml:"contract_page_size"`
}

// SeedUser is an initial staff account. The password is hashed into the
// database on first start and never compared in plain text afterwards.
type SeedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Admin    bool   `yaml:"admin"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/registro.db"
	}
	if cfg.Storage.ExpireDays == 0 {
		cfg.Storage.ExpireDays = 7
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Extractor.TimeoutSeconds == 0 {
		cfg.Extractor.TimeoutSeconds = 60
	}
	if cfg.Browse.DocumentPageSize == 0 {
		cfg.Browse.DocumentPageSize = 20
	}
	if cfg.Browse.ContractPageSize == 0 {
		cfg.Browse.ContractPageSize = 10
	}

	GlobalConfig = &cfg
	return &cfg, nil
}
