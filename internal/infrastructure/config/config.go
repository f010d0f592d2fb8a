package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CATALOG_API_BASE_URL
const EnvPrefix = "CATALOG"

// Config holds all console configuration
type Config struct {
	API       APIConfig
	Catalog   CatalogConfig
	Barcode   BarcodeConfig
	Print     PrintConfig
	Storage   StorageConfig
	Image     ImageConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

// APIConfig describes how to reach the catalog endpoints
type APIConfig struct {
	BaseURL    string        // e.g. https://hub.local/m/inventory/api
	Timeout    time.Duration // per request
	Retries    int           // extra attempts for GET requests only
	RetryWait  time.Duration // initial backoff between retries
	UserAgent  string
	CSRFSource string // static, env or cookie
	CSRFToken  string // used when CSRFSource is static
	CSRFEnv    string // variable read when CSRFSource is env
	CSRFCookie string // cookie read when CSRFSource is cookie
}

// CatalogConfig holds list defaults
type CatalogConfig struct {
	PerPage int
}

// BarcodeConfig holds label layout knobs
type BarcodeConfig struct {
	Format         string  // code128 or ean13
	ModuleWidth    float64 // mm
	ModuleHeight   float64 // mm
	FontSize       float64 // pt
	TextDistance   float64 // mm
	QuietZone      float64 // mm
	Foreground     string
	Background     string
	VerifyChecksum bool
}

// PrintConfig selects the native bridge and the fallback surface
type PrintConfig struct {
	NativeEnabled   bool
	NativeCommand   string   // e.g. lp
	NativeArgs      []string // arguments before the markup is piped on stdin
	NativeTimeout   time.Duration
	NativeFormat    string // svg pipes the label markup, pdf pipes a rendered page
	Fallback        string // browser or pdf
	ChromeRemoteURL string // optional DevTools endpoint
	Headless        bool
	NoSandbox       bool
}

// StorageConfig selects where rendered label PDFs are archived
type StorageConfig struct {
	Type         string // filesystem or s3
	BasePath     string
	BaseURL      string
	Bucket       string
	Prefix       string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
}

// ImageConfig controls downscaling of product image attachments
type ImageConfig struct {
	Enabled      bool
	MaxDimension int // longest side in pixels
	Quality      int // JPEG quality 1-100
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	ExportInterval    time.Duration
	// LogsEnabled also ships log records to the collector
	LogsEnabled bool
}

// Load reads configuration from catalogctl.toml and CATALOG_* environment
// variables. An explicit path replaces the default search locations.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("catalogctl")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/catalogctl")
	}

	// Booleans cannot be defaulted after the fact, their zero value is meaningful
	v.SetDefault("print.native_enabled", true)
	v.SetDefault("print.headless", true)
	v.SetDefault("image.enabled", true)
	v.SetDefault("storage.use_path_style", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		API: APIConfig{
			BaseURL:    v.GetString("api.base_url"),
			Timeout:    v.GetDuration("api.timeout"),
			Retries:    v.GetInt("api.retries"),
			RetryWait:  v.GetDuration("api.retry_wait"),
			UserAgent:  v.GetString("api.user_agent"),
			CSRFSource: v.GetString("api.csrf_source"),
			CSRFToken:  v.GetString("api.csrf_token"),
			CSRFEnv:    v.GetString("api.csrf_env"),
			CSRFCookie: v.GetString("api.csrf_cookie"),
		},
		Catalog: CatalogConfig{
			PerPage: v.GetInt("catalog.per_page"),
		},
		Barcode: BarcodeConfig{
			Format:         v.GetString("barcode.format"),
			ModuleWidth:    v.GetFloat64("barcode.module_width"),
			ModuleHeight:   v.GetFloat64("barcode.module_height"),
			FontSize:       v.GetFloat64("barcode.font_size"),
			TextDistance:   v.GetFloat64("barcode.text_distance"),
			QuietZone:      v.GetFloat64("barcode.quiet_zone"),
			Foreground:     v.GetString("barcode.foreground"),
			Background:     v.GetString("barcode.background"),
			VerifyChecksum: v.GetBool("barcode.verify_checksum"),
		},
		Print: PrintConfig{
			NativeEnabled:   v.GetBool("print.native_enabled"),
			NativeCommand:   v.GetString("print.native_command"),
			NativeArgs:      v.GetStringSlice("print.native_args"),
			NativeTimeout:   v.GetDuration("print.native_timeout"),
			NativeFormat:    v.GetString("print.native_format"),
			Fallback:        v.GetString("print.fallback"),
			ChromeRemoteURL: v.GetString("print.chrome_remote_url"),
			Headless:        v.GetBool("print.headless"),
			NoSandbox:       v.GetBool("print.no_sandbox"),
		},
		Storage: StorageConfig{
			Type:         v.GetString("storage.type"),
			BasePath:     v.GetString("storage.base_path"),
			BaseURL:      v.GetString("storage.base_url"),
			Bucket:       v.GetString("storage.bucket"),
			Prefix:       v.GetString("storage.prefix"),
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			UseSSL:       v.GetBool("storage.use_ssl"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
		},
		Image: ImageConfig{
			Enabled:      v.GetBool("image.enabled"),
			MaxDimension: v.GetInt("image.max_dimension"),
			Quality:      v.GetInt("image.quality"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for unset configuration
func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000/m/inventory/api"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.API.RetryWait == 0 {
		cfg.API.RetryWait = 200 * time.Millisecond
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "catalogctl/1.0"
	}
	if cfg.API.CSRFSource == "" {
		cfg.API.CSRFSource = "cookie"
	}
	if cfg.API.CSRFEnv == "" {
		cfg.API.CSRFEnv = "CATALOG_CSRF_TOKEN"
	}
	if cfg.API.CSRFCookie == "" {
		cfg.API.CSRFCookie = "csrftoken"
	}
	if cfg.Catalog.PerPage == 0 {
		cfg.Catalog.PerPage = 10
	}
	if cfg.Barcode.Format == "" {
		cfg.Barcode.Format = "code128"
	}
	if cfg.Barcode.ModuleWidth == 0 {
		cfg.Barcode.ModuleWidth = 0.3
	}
	if cfg.Barcode.ModuleHeight == 0 {
		cfg.Barcode.ModuleHeight = 10
	}
	if cfg.Barcode.FontSize == 0 {
		cfg.Barcode.FontSize = 10
	}
	if cfg.Barcode.TextDistance == 0 {
		cfg.Barcode.TextDistance = 5
	}
	if cfg.Barcode.QuietZone == 0 {
		cfg.Barcode.QuietZone = 6.5
	}
	if cfg.Barcode.Foreground == "" {
		cfg.Barcode.Foreground = "#000000"
	}
	if cfg.Barcode.Background == "" {
		cfg.Barcode.Background = "#ffffff"
	}
	if cfg.Print.NativeCommand == "" {
		cfg.Print.NativeCommand = "lp"
	}
	if cfg.Print.NativeTimeout == 0 {
		cfg.Print.NativeTimeout = 30 * time.Second
	}
	if cfg.Print.NativeFormat == "" {
		cfg.Print.NativeFormat = "svg"
	}
	if cfg.Print.Fallback == "" {
		cfg.Print.Fallback = "browser"
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "filesystem"
	}
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "./labels"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "labels"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Image.MaxDimension == 0 {
		cfg.Image.MaxDimension = 1024
	}
	if cfg.Image.Quality == 0 {
		cfg.Image.Quality = 85
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "catalogctl"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
}

// validate checks the configuration for invalid values
func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}
	if c.API.Retries < 0 {
		return fmt.Errorf("api.retries cannot be negative")
	}
	if !slices.Contains([]string{"static", "env", "cookie"}, c.API.CSRFSource) {
		return fmt.Errorf("api.csrf_source must be one of static, env, cookie, got %q", c.API.CSRFSource)
	}
	if !slices.Contains([]int{10, 25, 50, 100}, c.Catalog.PerPage) {
		return fmt.Errorf("catalog.per_page must be one of 10, 25, 50, 100, got %d", c.Catalog.PerPage)
	}
	if c.Barcode.Format != "code128" && c.Barcode.Format != "ean13" {
		return fmt.Errorf("barcode.format must be code128 or ean13, got %q", c.Barcode.Format)
	}
	if c.Barcode.ModuleWidth < 0 || c.Barcode.ModuleHeight < 0 || c.Barcode.QuietZone < 0 {
		return fmt.Errorf("barcode dimensions cannot be negative")
	}
	if c.Print.NativeTimeout < 0 {
		return fmt.Errorf("print.native_timeout cannot be negative")
	}
	if c.Print.NativeFormat != "svg" && c.Print.NativeFormat != "pdf" {
		return fmt.Errorf("print.native_format must be svg or pdf, got %q", c.Print.NativeFormat)
	}
	if c.Print.Fallback != "browser" && c.Print.Fallback != "pdf" {
		return fmt.Errorf("print.fallback must be browser or pdf, got %q", c.Print.Fallback)
	}
	switch c.Storage.Type {
	case "filesystem":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("storage.type must be filesystem or s3, got %q", c.Storage.Type)
	}
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return fmt.Errorf("image.quality must be between 1 and 100, got %d", c.Image.Quality)
	}
	if c.Image.MaxDimension < 0 {
		return fmt.Errorf("image.max_dimension cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	return nil
}
