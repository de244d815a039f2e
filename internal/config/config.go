// Package config загружает настройки приложения из YAML-файла,
// .env-файлов и переменных окружения.
//
// Порядок приоритета (сверху вниз):
//
//  1. переменные окружения (тег `env`)
//  2. .env.local, затем .env (или только файл из ENV_FILE)
//  3. YAML-файл (необязательный)
//  4. значения по умолчанию
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"AIBlog/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath путь к конфигу по умолчанию
const DefaultPath = "config.yml"

// Config корневая конфигурация приложения
type Config struct {
	AI       AIConfig       `yaml:"ai"`
	Telegram TelegramConfig `yaml:"telegram"`
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  logger.Config  `yaml:"logging"`
}

// AIConfig настройки генеративного API
type AIConfig struct {
	APIKey         string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	TextModel      string        `yaml:"text_model" env:"GEMINI_TEXT_MODEL" validate:"required"`
	ImageModel     string        `yaml:"image_model" env:"GEMINI_IMAGE_MODEL" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"GEMINI_REQUEST_TIMEOUT" validate:"gte=0"`
}

// HasAPIKey сообщает, настроен ли ключ доступа к API
func (c AIConfig) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// TelegramConfig настройки бота
type TelegramConfig struct {
	BotToken      string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	AllowedChatID int64  `yaml:"allowed_chat_id" env:"TELEGRAM_ALLOWED_CHAT_ID"`
	Debug         bool   `yaml:"debug" env:"TELEGRAM_DEBUG"`
}

// Enabled бот запускается только при наличии токена
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != ""
}

// HTTPConfig настройки HTTP API
type HTTPConfig struct {
	Enabled         bool          `yaml:"enabled" env:"HTTP_ENABLED"`
	Port            int           `yaml:"port" env:"HTTP_PORT" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	Debug           bool          `yaml:"debug" env:"HTTP_DEBUG"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		AI: AIConfig{
			TextModel:  "gemini-2.5-flash",
			ImageModel: "imagen-3.0-generate-002",
		},
		HTTP: HTTPConfig{
			Enabled:         true,
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load читает конфигурацию. Отсутствие YAML-файла не ошибка.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("ошибка парсинга конфига %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// работаем только на переменных окружения
	default:
		return nil, fmt.Errorf("ошибка чтения конфига %s: %w", path, err)
	}

	applyEnvOverrides(reflect.ValueOf(cfg).Elem())

	// API_KEY старое имя переменной с ключом
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("API_KEY")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}

	return cfg, nil
}

// GetPath возвращает путь из CONFIG_PATH или путь по умолчанию
func GetPath(defaultPath string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultPath
}

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("ошибка загрузки %s: %w", envFile, err)
		}
		return nil
	}

	// godotenv не перезаписывает уже установленные переменные,
	// поэтому .env.local грузим первым
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("ошибка загрузки %s: %w", name, err)
		}
	}

	return nil
}

func applyEnvOverrides(v reflect.Value) {
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Duration(0)) {
			applyEnvOverrides(field)
			continue
		}

		name := t.Field(i).Tag.Get("env")
		if name == "" {
			continue
		}

		if val, ok := os.LookupEnv(name); ok && val != "" {
			setField(field, val)
		}
	}
}

func setField(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(n)
		}
	case reflect.Bool:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "true", "yes":
			field.SetBool(true)
		default:
			field.SetBool(false)
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(val, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
}
