// Package config holds the complete application configuration with
// yaml file loading and environment variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Media engine and working-file configuration
	Media MediaConfig `yaml:"media" json:"media"`

	// Editor defaults (virtual frame, overlay limits)
	Editor EditorConfig `yaml:"editor" json:"editor"`

	// Sticker catalog configuration
	Stickers StickerConfig `yaml:"stickers" json:"stickers"`

	// Export configuration
	Export ExportConfig `yaml:"export" json:"export"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string        `yaml:"host" json:"host" env:"OPENREEL_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" json:"port" env:"OPENREEL_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" env:"OPENREEL_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" env:"OPENREEL_WRITE_TIMEOUT" default:"30s"`
	EnableCORS   bool          `yaml:"enable_cors" json:"enable_cors" env:"OPENREEL_ENABLE_CORS" default:"true"`
}

// DatabaseConfig holds database connection options
type DatabaseConfig struct {
	Type         string `yaml:"type" json:"type" env:"DATABASE_TYPE" default:"sqlite"`
	Host         string `yaml:"host" json:"host" env:"POSTGRES_HOST" default:"localhost"`
	Port         int    `yaml:"port" json:"port" env:"POSTGRES_PORT" default:"5432"`
	Username     string `yaml:"username" json:"username" env:"POSTGRES_USER" default:"openreel"`
	Password     string `yaml:"password" json:"password" env:"POSTGRES_PASSWORD"`
	Database     string `yaml:"database" json:"database" env:"POSTGRES_DB" default:"openreel"`
	DataDir      string `yaml:"data_dir" json:"data_dir" env:"OPENREEL_DATA_DIR" default:"./openreel-data"`
	DatabasePath string `yaml:"database_path" json:"database_path" env:"OPENREEL_DATABASE_PATH"`
	LogQueries   bool   `yaml:"log_queries" json:"log_queries" env:"DB_LOG_QUERIES" default:"false"`
}

// MediaConfig holds media engine configuration
type MediaConfig struct {
	FFmpegPath    string        `yaml:"ffmpeg_path" json:"ffmpeg_path" env:"OPENREEL_FFMPEG" default:"ffmpeg"`
	FFprobePath   string        `yaml:"ffprobe_path" json:"ffprobe_path" env:"OPENREEL_FFPROBE" default:"ffprobe"`
	WorkDir       string        `yaml:"work_dir" json:"work_dir" env:"OPENREEL_WORK_DIR"`
	OpTimeout     time.Duration `yaml:"op_timeout" json:"op_timeout" env:"OPENREEL_MEDIA_TIMEOUT" default:"10m"`
	MaxUploadSize int64         `yaml:"max_upload_size" json:"max_upload_size" env:"OPENREEL_MAX_UPLOAD" default:"1073741824"`
}

// EditorConfig holds editing session defaults
type EditorConfig struct {
	// VirtualFrameWidth/Height define the reference frame sticker
	// geometry is stored against, independent of display scale.
	VirtualFrameWidth  int     `yaml:"virtual_frame_width" json:"virtual_frame_width" env:"OPENREEL_FRAME_W" default:"720"`
	VirtualFrameHeight int     `yaml:"virtual_frame_height" json:"virtual_frame_height" env:"OPENREEL_FRAME_H" default:"1280"`
	MinStickerSize     float64 `yaml:"min_sticker_size" json:"min_sticker_size" env:"OPENREEL_STICKER_MIN" default:"10"`
	MaxStickerSize     float64 `yaml:"max_sticker_size" json:"max_sticker_size" env:"OPENREEL_STICKER_MAX" default:"180"`
	OverlayMargin      float64 `yaml:"overlay_margin" json:"overlay_margin" env:"OPENREEL_OVERLAY_MARGIN" default:"10"`
	DefaultAudioVolume float64 `yaml:"default_audio_volume" json:"default_audio_volume" env:"OPENREEL_AUDIO_VOLUME" default:"0.5"`
}

// StickerConfig holds sticker catalog configuration
type StickerConfig struct {
	CatalogURL   string        `yaml:"catalog_url" json:"catalog_url" env:"OPENREEL_STICKER_CATALOG_URL"`
	PackDir      string        `yaml:"pack_dir" json:"pack_dir" env:"OPENREEL_STICKER_PACK_DIR"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" env:"OPENREEL_STICKER_TIMEOUT" default:"15s"`
	WatchPackDir bool          `yaml:"watch_pack_dir" json:"watch_pack_dir" env:"OPENREEL_STICKER_WATCH" default:"true"`
}

// ExportConfig holds export and upload configuration
type ExportConfig struct {
	UploadURL          string `yaml:"upload_url" json:"upload_url" env:"OPENREEL_UPLOAD_URL"`
	MaxUploadBytes     int64  `yaml:"max_upload_bytes" json:"max_upload_bytes" env:"OPENREEL_EXPORT_MAX_BYTES" default:"104857600"`
	PrimaryBitrate     string `yaml:"primary_bitrate" json:"primary_bitrate" env:"OPENREEL_EXPORT_BITRATE" default:"2000k"`
	PrimaryResolution  string `yaml:"primary_resolution" json:"primary_resolution" env:"OPENREEL_EXPORT_RESOLUTION" default:"1280x720"`
	FallbackBitrate    string `yaml:"fallback_bitrate" json:"fallback_bitrate" env:"OPENREEL_EXPORT_FALLBACK_BITRATE" default:"1000k"`
	FallbackResolution string `yaml:"fallback_resolution" json:"fallback_resolution" env:"OPENREEL_EXPORT_FALLBACK_RESOLUTION" default:"854x480"`
	MaxPayloadBytes    int64  `yaml:"max_payload_bytes" json:"max_payload_bytes" env:"OPENREEL_EXPORT_MAX_PAYLOAD" default:"262144"`
	EnableThumbnails   bool   `yaml:"enable_thumbnails" json:"enable_thumbnails" env:"OPENREEL_EXPORT_THUMBNAILS" default:"true"`
	ThumbnailQuality   int    `yaml:"thumbnail_quality" json:"thumbnail_quality" env:"OPENREEL_THUMBNAIL_QUALITY" default:"85"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"LOG_LEVEL" default:"info"`
	Format string `yaml:"format" json:"format" env:"LOG_FORMAT" default:"text"`
}

// ConfigWatcher is notified when the configuration changes
type ConfigWatcher func(oldConfig, newConfig *Config)

// ConfigManager manages application configuration
type ConfigManager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
	watchers   []ConfigWatcher
}

var (
	globalManager *ConfigManager
	managerOnce   sync.Once
)

// GetConfigManager returns the global configuration manager
func GetConfigManager() *ConfigManager {
	managerOnce.Do(func() {
		globalManager = NewConfigManager()
	})
	return globalManager
}

// NewConfigManager creates a new configuration manager with defaults
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		config: DefaultConfig(),
	}
}

// DefaultConfig returns a configuration with all default values set
func DefaultConfig() *Config {
	config := &Config{}
	if err := loadStructFromEnv(reflect.ValueOf(config).Elem()); err != nil {
		log.Printf("WARN: failed to apply config defaults: %v", err)
	}
	return config
}

// LoadConfig loads configuration from file and environment variables
func (cm *ConfigManager) LoadConfig(configPath string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	oldConfig := *cm.config
	cm.configPath = configPath

	newConfig := DefaultConfig()

	if configPath != "" && fileExists(configPath) {
		if err := cm.loadFromFile(configPath, newConfig); err != nil {
			return fmt.Errorf("failed to load config from file: %w", err)
		}
		log.Printf("Configuration loaded from file: %s", configPath)
	}

	// Environment always wins over file values
	if err := loadStructFromEnv(reflect.ValueOf(newConfig).Elem()); err != nil {
		return fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cm.validateConfig(newConfig); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cm.applyDerivedConfig(newConfig)
	cm.config = newConfig

	for _, watcher := range cm.watchers {
		go watcher(&oldConfig, newConfig)
	}
	return nil
}

// GetConfig returns a copy of the current configuration (thread-safe)
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	configCopy := *cm.config
	return &configCopy
}

// AddWatcher adds a configuration change watcher
func (cm *ConfigManager) AddWatcher(watcher ConfigWatcher) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.watchers = append(cm.watchers, watcher)
}

func (cm *ConfigManager) loadFromFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	case ".json":
		return json.Unmarshal(data, config)
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
}

func loadStructFromEnv(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Duration(0)) {
			if err := loadStructFromEnv(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envValue := os.Getenv(envTag)
		if envValue == "" {
			if field.IsZero() {
				envValue = fieldType.Tag.Get("default")
			}
			if envValue == "" {
				continue
			}
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set field %s: %w", fieldType.Name, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(duration))
		} else {
			intVal, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(intVal)
		}
	case reflect.Float32, reflect.Float64:
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatVal)
	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolVal)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			values := strings.Split(value, ",")
			for i, v := range values {
				values[i] = strings.TrimSpace(v)
			}
			field.Set(reflect.ValueOf(values))
		}
	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

func (cm *ConfigManager) validateConfig(config *Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Database.Type != "sqlite" && config.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database type: %s", config.Database.Type)
	}
	if config.Editor.VirtualFrameWidth <= 0 || config.Editor.VirtualFrameHeight <= 0 {
		return fmt.Errorf("invalid virtual frame size: %dx%d",
			config.Editor.VirtualFrameWidth, config.Editor.VirtualFrameHeight)
	}
	if config.Editor.MinStickerSize <= 0 || config.Editor.MaxStickerSize < config.Editor.MinStickerSize {
		return fmt.Errorf("invalid sticker size bounds: [%v,%v]",
			config.Editor.MinStickerSize, config.Editor.MaxStickerSize)
	}
	if config.Export.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid export max upload bytes: %d", config.Export.MaxUploadBytes)
	}
	return nil
}

func (cm *ConfigManager) applyDerivedConfig(config *Config) {
	if config.Database.DatabasePath == "" && config.Database.Type == "sqlite" {
		config.Database.DatabasePath = filepath.Join(config.Database.DataDir, "openreel.db")
	}
	if config.Media.WorkDir == "" {
		config.Media.WorkDir = filepath.Join(config.Database.DataDir, "work")
	}
	if config.Stickers.PackDir == "" {
		config.Stickers.PackDir = filepath.Join(config.Database.DataDir, "stickers")
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Global convenience functions

// Get returns the current global configuration
func Get() *Config {
	return GetConfigManager().GetConfig()
}

// Load loads configuration from the specified path
func Load(configPath string) error {
	return GetConfigManager().LoadConfig(configPath)
}

// AddWatcher adds a global configuration watcher
func AddWatcher(watcher ConfigWatcher) {
	GetConfigManager().AddWatcher(watcher)
}
