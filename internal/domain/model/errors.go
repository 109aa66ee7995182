package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRemoteUnavailable 外部API（Places / レコードストア）へのネットワークエラー・タイムアウト
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrDataFormat 外部APIから想定外の形式のデータが返された
	ErrDataFormat = errors.New("unexpected data format")
	// ErrNotFound 存在しないIDに対する操作
	ErrNotFound = errors.New("not found")
	// ErrConflict 既に存在するIDでの作成
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument リクエストパラメータの不備
	ErrInvalidArgument = errors.New("invalid argument")
)

// APIError 外部APIが返したエラーレスポンス
type APIError struct {
	Status  int
	Code    any
	Message string
	Body    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	return fmt.Sprintf("api error: status=%d code=%v message=%s", e.Status, e.Code, msg)
}

// ParseAPIError レスポンスボディからAPIErrorを組み立てる
// {message, error} と {code, message} の両方の形式に対応
func ParseAPIError(status int, body []byte) *APIError {
	out := &APIError{Status: status, Body: string(body)}

	var m map[string]any
	if json.Unmarshal(body, &m) == nil {
		if v, ok := m["code"]; ok {
			out.Code = v
		} else if v, ok := m["error"]; ok {
			out.Code = v
		}
		if v, ok := m["message"].(string); ok {
			out.Message = v
		}
	}
	return out
}

// ErrorKind エラーの分類名を返す（APIレスポンスの error フィールドに使う）
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrDataFormat):
		return "data_format"
	case errors.Is(err, ErrRemoteUnavailable):
		return "remote_unavailable"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "internal_error"
	}
}
