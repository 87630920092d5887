package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config is the flat application configuration, loaded from the
// settings file and environment variables.
type Config struct {
	// Server
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// Library / catalog
	LibraryRoot string `mapstructure:"library_root"`
	DBFilePath  string `mapstructure:"db_file_path"`

	// Thumbnails
	ThumbnailDir         string `mapstructure:"thumbnail_dir"`
	ThumbnailWidths      []int  `mapstructure:"thumbnail_widths"`
	ThumbnailJPEGQuality int    `mapstructure:"thumbnail_jpeg_quality"`
	ThumbnailCacheSizeMB int64  `mapstructure:"thumbnail_cache_size_mb"`

	// Query cache
	QueryCacheEntries int           `mapstructure:"query_cache_entries"`
	QueryCacheTTL     time.Duration `mapstructure:"query_cache_ttl"`

	// Cache provider
	CacheType          string `mapstructure:"cache_type"`
	CacheRedisAddr     string `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string `mapstructure:"cache_redis_password"`
	CacheRedisDB       int    `mapstructure:"cache_redis_db"`

	// Scanner
	ScanPollInterval time.Duration `mapstructure:"scan_poll_interval"`

	// Pagination
	PageSizeDefault int `mapstructure:"page_size_default"`
	PageSizeMax     int `mapstructure:"page_size_max"`

	// Rate limiting for the image serving endpoints
	RateLimitImageRPS   float64       `mapstructure:"rate_limit_image_rps"`
	RateLimitImageBurst int           `mapstructure:"rate_limit_image_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire_time"`

	// Worker
	WorkerCount int `mapstructure:"worker_count"`
}

// InitConfig loads the configuration once.
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

func loadConfig() {
	setDefaults()

	path := viper.GetString("config_file_path")
	if path == "" {
		path = "settings.json"
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Info: %s not found, using defaults and environment variables\n", path)
	} else {
		fmt.Fprintf(os.Stderr, "Info: Loaded configuration from %s\n", path)
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}

	// WorkerCount: -1 = GOMAXPROCS, 0 = max(2, GOMAXPROCS), >0 = as configured
	switch {
	case globalConfig.WorkerCount < 0:
		globalConfig.WorkerCount = runtime.GOMAXPROCS(0)
	case globalConfig.WorkerCount == 0:
		globalConfig.WorkerCount = getCpus()
	}
}

func setDefaults() {
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "30s")
	viper.SetDefault("server_idle_timeout", "120s")

	viper.SetDefault("library_root", ".")
	viper.SetDefault("db_file_path", "")

	viper.SetDefault("thumbnail_dir", "")
	viper.SetDefault("thumbnail_widths", []int{128, 256, 512})
	viper.SetDefault("thumbnail_jpeg_quality", 85)
	viper.SetDefault("thumbnail_cache_size_mb", 64)

	viper.SetDefault("query_cache_entries", 512)
	viper.SetDefault("query_cache_ttl", "10m")

	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_redis_addr", "localhost:6379")
	viper.SetDefault("cache_redis_password", "")
	viper.SetDefault("cache_redis_db", 0)

	// 0 disables the polling watcher
	viper.SetDefault("scan_poll_interval", "0s")

	viper.SetDefault("page_size_default", 50)
	viper.SetDefault("page_size_max", 500)

	viper.SetDefault("rate_limit_image_rps", 100.0)
	viper.SetDefault("rate_limit_image_burst", 200)
	viper.SetDefault("rate_limit_expire_time", "10m")

	viper.SetDefault("worker_count", 0)
}

// Addr returns the listen address in "host:port" form.
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// CatalogPath returns the catalog database path. The catalog lives
// inside the library root unless overridden.
func (c *Config) CatalogPath() string {
	if c.DBFilePath != "" {
		return c.DBFilePath
	}
	return filepath.Join(c.LibraryRoot, "catalog.db")
}

// ThumbnailPath returns the thumbnail store directory.
func (c *Config) ThumbnailPath() string {
	if c.ThumbnailDir != "" {
		return c.ThumbnailDir
	}
	return filepath.Join(c.LibraryRoot, ".thumbnails")
}

// GetWorkerCount returns the resolved worker count.
func (c *Config) GetWorkerCount() int {
	if c.WorkerCount <= 0 {
		return getCpus()
	}
	return c.WorkerCount
}

func getCpus() int {
	n := runtime.GOMAXPROCS(0)
	if n < 2 {
		return 2
	}
	return n
}
