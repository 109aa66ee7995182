// Package session はブラウズセッション単位の状態（取得済みコーヒーショップのキャッシュ）を保持する。
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session ブラウズセッション。ページ間で共有される状態を持つ
type Session struct {
	ID        string
	StartedAt time.Time
	Stores    *StoreCache
}

// New 新しいセッションを開始する
func New() *Session {
	return &Session{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		Stores:    NewStoreCache(),
	}
}

// End セッションを終了し、キャッシュを破棄する
func (s *Session) End() {
	s.Stores.Clear()
}
