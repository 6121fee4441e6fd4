package cache

import (
	"github.com/KOMKZ/go-yogan-servicemgr/errcode"
)

// ModuleCode cache errors are 61xxxx
const ModuleCode = 61

const (
	ErrCodeCacheMiss        = 1
	ErrCodeStoreGet         = 2
	ErrCodeStoreSet         = 3
	ErrCodeStoreDelete      = 4
	ErrCodeConfigInvalid    = 5
	ErrCodeStoreUnavailable = 6
	ErrCodeNotStarted       = 7
)

var (
	// ErrCacheMiss the key is absent or expired
	ErrCacheMiss = errcode.Register(errcode.New(
		ModuleCode, ErrCodeCacheMiss, "cache", "error.cache.miss", "cache miss"))

	ErrStoreGet = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStoreGet, "cache", "error.cache.store_get", "cache store read failed"))

	ErrStoreSet = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStoreSet, "cache", "error.cache.store_set", "cache store write failed"))

	ErrStoreDelete = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStoreDelete, "cache", "error.cache.store_delete", "cache store delete failed"))

	// ErrConfigInvalid the service configuration failed validation
	ErrConfigInvalid = errcode.Register(errcode.New(
		ModuleCode, ErrCodeConfigInvalid, "cache", "error.cache.config_invalid", "invalid cache configuration"))

	// ErrStoreUnavailable the redis server did not answer PING on start
	ErrStoreUnavailable = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStoreUnavailable, "cache", "error.cache.store_unavailable", "cache store unavailable"))

	// ErrNotStarted an operation was called outside Start..Stop
	ErrNotStarted = errcode.Register(errcode.New(
		ModuleCode, ErrCodeNotStarted, "cache", "error.cache.not_started", "cache service is not running"))
)
