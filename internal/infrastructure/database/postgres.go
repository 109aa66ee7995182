package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect SQLドライバごとの差分
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SQLClient database/sql 接続のラッパー（PostgreSQL / SQLite 共通）
type SQLClient struct {
	DB      *sql.DB
	Dialect Dialect
}

// NewPostgreSQLClient 新しいPostgreSQLクライアントを作成
func NewPostgreSQLClient(databaseURL string) (*SQLClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URLが設定されていません")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL接続の初期化に失敗: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &SQLClient{DB: db, Dialect: DialectPostgres}, nil
}

// NewPostgreSQLClientWithRetry 起動直後のDB待ちのためにリトライ付きで接続する
func NewPostgreSQLClientWithRetry(databaseURL string, maxRetries int, interval time.Duration) (*SQLClient, error) {
	client, err := NewPostgreSQLClient(databaseURL)
	if err != nil {
		return nil, err
	}

	var pingErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pingErr = client.DB.PingContext(ctx)
		cancel()
		if pingErr == nil {
			return client, nil
		}
		slog.Warn("PostgreSQL接続リトライ", "attempt", attempt, "error", pingErr)
		time.Sleep(interval)
	}

	client.Close()
	return nil, fmt.Errorf("PostgreSQLへの接続に失敗: %w", pingErr)
}

// NewSQLiteClient 新しいSQLiteクライアントを作成（ローカル開発・テスト用）
func NewSQLiteClient(path string) (*SQLClient, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("SQLite接続の初期化に失敗: %w", err)
	}

	// SQLiteは書き込みを直列化する
	db.SetMaxOpenConns(1)

	return &SQLClient{DB: db, Dialect: DialectSQLite}, nil
}

// Close データベース接続を閉じる
func (c *SQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// HealthCheck データベース接続のヘルスチェック
func (c *SQLClient) HealthCheck(ctx context.Context) error {
	if c.DB == nil {
		return fmt.Errorf("SQLクライアントが初期化されていません")
	}
	return c.DB.PingContext(ctx)
}

// Rebind $1, $2 ... のプレースホルダーをダイアレクトに合わせて書き換える
func (c *SQLClient) Rebind(query string) string {
	if c.Dialect != DialectSQLite {
		return query
	}

	out := make([]byte, 0, len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' {
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if j > i+1 {
				out = append(out, '?')
				i = j - 1
				continue
			}
		}
		out = append(out, query[i])
	}
	return string(out)
}
