package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Root struct {
	Env   string `yaml:"env"`
	Local Config `yaml:"local"`
	Dev   Config `yaml:"dev"`
	Prod  Config `yaml:"prod"`
}

type Config struct {
	Env string `yaml:"-"`

	Log struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		AddSource bool   `yaml:"add_source"`
	} `yaml:"log"`

	Server struct {
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		GinMode string `yaml:"gin_mode"`
	} `yaml:"server"`

	Places struct {
		Backend           string `yaml:"backend"` // foursquare|elastic
		FoursquareAPIKey  string `yaml:"foursquare_api_key"`
		FoursquareBaseURL string `yaml:"foursquare_base_url"`
		Query             string `yaml:"query"`
		UnsplashAccessKey string `yaml:"unsplash_access_key"`
		ElasticURL        string `yaml:"elastic_url"`
		ElasticIndex      string `yaml:"elastic_index"`
		DefaultLatLong    string `yaml:"default_lat_long"`
		DefaultLimit      int    `yaml:"default_limit"`
	} `yaml:"places"`

	Store struct {
		Backend         string `yaml:"backend"` // memory|supabase|postgres|sqlite
		SupabaseURL     string `yaml:"supabase_url"`
		SupabaseAnonKey string `yaml:"supabase_anon_key"`
		DatabaseURL     string `yaml:"database_url"`
		SQLitePath      string `yaml:"sqlite_path"`
	} `yaml:"store"`

	Cache struct {
		FirestoreProjectID string `yaml:"firestore_project_id"`
		CredentialsFile    string `yaml:"credentials_file"`
		TTLMinutes         int    `yaml:"ttl_minutes"`
	} `yaml:"cache"`

	HTTP struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"http"`
}

// Load 設定ファイル（任意）→ .env → 環境変数 の順に読み込む
// path が空、またはファイルが存在しない場合は環境変数とデフォルト値のみを使う
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".envの読み込みに失敗: %w", err)
	}

	var p Config
	env := strings.TrimSpace(strings.ToLower(os.Getenv("APP_ENV")))

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			var root Root
			if err := yaml.Unmarshal(b, &root); err != nil {
				return nil, fmt.Errorf("設定ファイルのパースに失敗: %w", err)
			}
			if env == "" {
				env = strings.TrimSpace(strings.ToLower(root.Env))
			}
			if env == "" {
				env = "local"
			}
			switch env {
			case "local":
				p = root.Local
			case "dev":
				p = root.Dev
			case "prod":
				p = root.Prod
			default:
				return nil, fmt.Errorf("unknown env=%q (expected local|dev|prod)", env)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	if env == "" {
		env = "local"
	}
	p.Env = env

	if err := applyEnv(&p); err != nil {
		return nil, err
	}
	applyDefaults(&p)

	if err := validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// applyEnv 環境変数が設定されている項目を上書きする
func applyEnv(p *Config) error {
	setString(&p.Log.Level, "LOG_LEVEL")
	setString(&p.Log.Format, "LOG_FORMAT")
	setString(&p.Server.Host, "HOST")
	setString(&p.Server.GinMode, "GIN_MODE")
	setString(&p.Places.Backend, "PLACES_BACKEND")
	setString(&p.Places.FoursquareAPIKey, "FOURSQUARE_API_KEY")
	setString(&p.Places.FoursquareBaseURL, "FOURSQUARE_BASE_URL")
	setString(&p.Places.Query, "PLACES_QUERY")
	setString(&p.Places.UnsplashAccessKey, "UNSPLASH_ACCESS_KEY")
	setString(&p.Places.ElasticURL, "ELASTIC_URL")
	setString(&p.Places.ElasticIndex, "ELASTIC_INDEX")
	setString(&p.Places.DefaultLatLong, "DEFAULT_LAT_LONG")
	setString(&p.Store.Backend, "STORE_BACKEND")
	setString(&p.Store.SupabaseURL, "SUPABASE_URL")
	setString(&p.Store.SupabaseAnonKey, "SUPABASE_ANON_KEY")
	setString(&p.Store.DatabaseURL, "DATABASE_URL")
	setString(&p.Store.SQLitePath, "SQLITE_PATH")
	setString(&p.Cache.FirestoreProjectID, "FIRESTORE_PROJECT_ID")
	setString(&p.Cache.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")

	for key, dst := range map[string]*int{
		"PORT":                 &p.Server.Port,
		"DEFAULT_LIMIT":        &p.Places.DefaultLimit,
		"CACHE_TTL_MINUTES":    &p.Cache.TTLMinutes,
		"HTTP_TIMEOUT_SECONDS": &p.HTTP.TimeoutSeconds,
	} {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func applyDefaults(p *Config) {
	if p.Server.Host == "" {
		p.Server.Host = "0.0.0.0"
	}
	if p.Server.Port == 0 {
		p.Server.Port = 8080
	}
	if p.Server.GinMode == "" {
		if p.Env == "prod" {
			p.Server.GinMode = "release"
		} else {
			p.Server.GinMode = "debug"
		}
	}

	p.Places.Backend = strings.ToLower(strings.TrimSpace(p.Places.Backend))
	if p.Places.Backend == "" {
		p.Places.Backend = "foursquare"
	}
	if p.Places.Query == "" {
		p.Places.Query = "coffee"
	}
	if p.Places.ElasticIndex == "" {
		p.Places.ElasticIndex = "coffee_stores"
	}
	if p.Places.DefaultLatLong == "" {
		p.Places.DefaultLatLong = "43.65267326999575,-79.39545615725015"
	}
	if p.Places.DefaultLimit <= 0 {
		p.Places.DefaultLimit = 6
	}

	p.Store.Backend = strings.ToLower(strings.TrimSpace(p.Store.Backend))
	if p.Store.Backend == "" {
		p.Store.Backend = "memory"
	}
	if p.Store.Backend == "sqlite" && p.Store.SQLitePath == "" {
		p.Store.SQLitePath = "coffee_stores.db"
	}

	if p.Cache.TTLMinutes <= 0 {
		p.Cache.TTLMinutes = 30
	}
	if p.HTTP.TimeoutSeconds <= 0 {
		p.HTTP.TimeoutSeconds = 10
	}

	if p.Log.Level == "" {
		if p.Env == "prod" {
			p.Log.Level = "info"
		} else {
			p.Log.Level = "debug"
		}
	}
	if p.Log.Format == "" {
		if p.Env == "prod" {
			p.Log.Format = "json"
		} else {
			p.Log.Format = "text"
		}
	}
}

// validate 選択したバックエンドに必要な値がそろっているか確認する
func validate(p *Config) error {
	switch p.Places.Backend {
	case "foursquare":
		if p.Places.FoursquareAPIKey == "" {
			return fmt.Errorf("FOURSQUARE_API_KEYが設定されていません")
		}
	case "elastic":
		if p.Places.ElasticURL == "" {
			return fmt.Errorf("ELASTIC_URLが設定されていません")
		}
	default:
		return fmt.Errorf("unknown places backend=%q (expected foursquare|elastic)", p.Places.Backend)
	}

	switch p.Store.Backend {
	case "memory", "sqlite":
	case "supabase":
		if p.Store.SupabaseURL == "" || p.Store.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_URLとSUPABASE_ANON_KEYが必要です")
		}
	case "postgres":
		if p.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URLが設定されていません")
		}
	default:
		return fmt.Errorf("unknown store backend=%q (expected memory|supabase|postgres|sqlite)", p.Store.Backend)
	}
	return nil
}

// Addr サーバーの待ち受けアドレス
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// HTTPTimeout 外部API呼び出しのタイムアウト
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// CacheTTL 検索結果キャッシュの有効期間
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}
