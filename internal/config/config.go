package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Auth    AuthConfig    `yaml:"auth"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Presale PresaleConfig `yaml:"presale"`
	Chains  []ChainConfig `yaml:"chains"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Transport string `yaml:"transport"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig toggles bearer token checks on the HTTP transport.
type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LedgerConfig selects the mirror backend serving ledger reads.
type LedgerConfig struct {
	Backend  string        `yaml:"backend"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	Snapshot string        `yaml:"snapshot"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// PresaleConfig holds buyer-facing defaults.
type PresaleConfig struct {
	DefaultChainID  int64  `yaml:"default_chain_id"`
	DefaultSlippage uint32 `yaml:"default_slippage"`
	MaxSlippage     uint32 `yaml:"max_slippage"`
}

// ChainConfig describes one supported network and its contract addresses.
// Empty addresses mean the contract is not deployed there.
type ChainConfig struct {
	ChainID        int64  `yaml:"chain_id"`
	Name           string `yaml:"name"`
	Explorer       string `yaml:"explorer"`
	RPCURL         string `yaml:"rpc_url"`
	PresaleAddress string `yaml:"presale_address"`
	TokenAddress   string `yaml:"token_address"`
	USDT           string `yaml:"usdt"`
	USDC           string `yaml:"usdc"`
	DAI            string `yaml:"dai"`
}

const (
	ChainMainnet int64 = 1
	ChainSepolia int64 = 11155111
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			Transport: "http",
		},
		DB: DBConfig{
			Path: "presale.db",
		},
		Ledger: LedgerConfig{
			Backend:  "sqlite",
			CacheTTL: 15 * time.Second,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "presale",
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "presale",
		},
		Presale: PresaleConfig{
			DefaultChainID:  ChainSepolia,
			DefaultSlippage: 3,
			MaxSlippage:     10,
		},
		Chains: []ChainConfig{
			{
				ChainID:  ChainMainnet,
				Name:     "Ethereum Mainnet",
				Explorer: "https://etherscan.io",
				RPCURL:   "https://eth-mainnet.g.alchemy.com/v2/demo",
			},
			{
				ChainID:  ChainSepolia,
				Name:     "Sepolia Testnet",
				Explorer: "https://sepolia.etherscan.io",
				RPCURL:   "https://eth-sepolia.g.alchemy.com/v2/demo",
			},
		},
	}
}

// Load reads configuration from an optional .env file, an optional YAML file
// and environment variables, in increasing order of precedence.
func Load() (Config, error) {
	envFile := os.Getenv("PRESALE_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("PRESALE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("PRESALE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PRESALE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid PRESALE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if transport := os.Getenv("PRESALE_TRANSPORT"); transport != "" {
		cfg.Server.Transport = transport
	}
	if dbPath := os.Getenv("PRESALE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if authStr := os.Getenv("PRESALE_AUTH_ENABLED"); authStr != "" {
		enabled, err := strconv.ParseBool(authStr)
		if err != nil {
			return fmt.Errorf("invalid PRESALE_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	if backend := os.Getenv("PRESALE_LEDGER_BACKEND"); backend != "" {
		cfg.Ledger.Backend = backend
	}
	if ttl := os.Getenv("PRESALE_LEDGER_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid PRESALE_LEDGER_CACHE_TTL: %w", err)
		}
		cfg.Ledger.CacheTTL = d
	}
	if snapshot := os.Getenv("PRESALE_LEDGER_SNAPSHOT"); snapshot != "" {
		cfg.Ledger.Snapshot = snapshot
	}
	if addr := os.Getenv("PRESALE_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("PRESALE_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if level := os.Getenv("PRESALE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("PRESALE_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}
	if chainStr := os.Getenv("PRESALE_DEFAULT_CHAIN_ID"); chainStr != "" {
		id, err := strconv.ParseInt(chainStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid PRESALE_DEFAULT_CHAIN_ID: %w", err)
		}
		cfg.Presale.DefaultChainID = id
	}

	applyChainEnv(cfg, ChainMainnet, "MAINNET")
	applyChainEnv(cfg, ChainSepolia, "SEPOLIA")
	return nil
}

func applyChainEnv(cfg *Config, chainID int64, suffix string) {
	chain := cfg.chain(chainID)
	if chain == nil {
		return
	}
	setIfEnv(&chain.PresaleAddress, "PRESALE_CONTRACT_ADDRESS_"+suffix)
	setIfEnv(&chain.TokenAddress, "HMESH_TOKEN_ADDRESS_"+suffix)
	setIfEnv(&chain.USDT, "USDT_"+suffix)
	setIfEnv(&chain.USDC, "USDC_"+suffix)
	setIfEnv(&chain.DAI, "DAI_"+suffix)
	setIfEnv(&chain.RPCURL, "RPC_URL_"+suffix)
}

func (c *Config) chain(chainID int64) *ChainConfig {
	for i := range c.Chains {
		if c.Chains[i].ChainID == chainID {
			return &c.Chains[i]
		}
	}
	return nil
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
