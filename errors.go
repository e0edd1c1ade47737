package authdemo

import "errors"

var (
	// ErrInvalidConfig is returned by Config.Validate and Build.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrBuilderUsed is returned by a second Build on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrRedisRequired is returned when a component needs Redis and none is
	// configured.
	ErrRedisRequired = errors.New("redis client required")
	// ErrEngineClosed is returned by operations on a closed Engine.
	ErrEngineClosed = errors.New("engine closed")
)
