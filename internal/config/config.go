package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義
const (
	DefaultImageModel      = "gemini-2.5-flash-image"
	DefaultVideoModel      = "veo-3.1-fast-generate-preview"
	DefaultVideoResolution = "720p"
	DefaultPollInterval    = 10 * time.Second
	DefaultImageTimeout    = time.Duration(0) // 0 は無制限
	DefaultVideoTimeout    = 30 * time.Minute
	DefaultHTTPTimeout     = 60 * time.Second
	DefaultRateInterval    = 2 * time.Second
	DefaultCacheTTL        = 30 * time.Minute
	DefaultCompressAbove   = 4 << 20 // 4MiB を超える参照画像は JPEG に圧縮する
	DefaultOutputDir       = "output"
	DefaultListenAddr      = ":8080"
)

// DefaultSettingsFile は設定ファイルの既定の保存先です。
var DefaultSettingsFile = filepath.Join(userConfigDir(), "gemini-studio", "settings.yaml")

// Config は環境変数から読み込んだアプリケーション全体の設定です。
type Config struct {
	GeminiAPIKey    string
	VideoAPIKey     string
	ImageModel      string
	VideoModel      string
	VideoResolution string

	PollInterval time.Duration
	ImageTimeout time.Duration
	VideoTimeout time.Duration
	HTTPTimeout  time.Duration
	RateInterval time.Duration

	CompressAbove int
	SettingsFile  string
	OutputDir     string
	ListenAddr    string
}

// LoadConfig は .env（存在すれば）と環境変数から設定を読み込みます。
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn(".env の読み込みに失敗しました", "error", err)
	}

	return &Config{
		GeminiAPIKey:    envutil.GetEnv("GEMINI_API_KEY", ""),
		VideoAPIKey:     envutil.GetEnv("VIDEO_API_KEY", ""),
		ImageModel:      envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		VideoModel:      envutil.GetEnv("VIDEO_GEMINI_MODEL", DefaultVideoModel),
		VideoResolution: envutil.GetEnv("VIDEO_RESOLUTION", DefaultVideoResolution),
		PollInterval:    durationEnv("VIDEO_POLL_INTERVAL", DefaultPollInterval),
		ImageTimeout:    durationEnv("GENERATION_TIMEOUT", DefaultImageTimeout),
		VideoTimeout:    durationEnv("VIDEO_TIMEOUT", DefaultVideoTimeout),
		HTTPTimeout:     durationEnv("HTTP_TIMEOUT", DefaultHTTPTimeout),
		RateInterval:    durationEnv("RATE_INTERVAL", DefaultRateInterval),
		CompressAbove:   intEnv("COMPRESS_ABOVE_BYTES", DefaultCompressAbove),
		SettingsFile:    envutil.GetEnv("SETTINGS_FILE", DefaultSettingsFile),
		OutputDir:       envutil.GetEnv("OUTPUT_DIR", DefaultOutputDir),
		ListenAddr:      envutil.GetEnv("LISTEN_ADDR", DefaultListenAddr),
	}
}

// durationEnv は "10s" や "30m" 形式の値を読み込みます。不正な値は既定値に戻して警告します。
func durationEnv(key string, def time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	if raw == "0" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		slog.Warn("不正な期間の指定のため既定値を使います", "key", key, "value", raw, "default", def)
		return def
	}
	return d
}

func intEnv(key string, def int) int {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		slog.Warn("不正な数値の指定のため既定値を使います", "key", key, "value", raw, "default", def)
		return def
	}
	return n
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}
