package ports

import "context"

type CachePort[T any] interface {
	Set(key string, val T)
	Get(key string) (T, bool)
	Load(ctx context.Context, key string, fn func(ctx context.Context, key string) (T, error)) (T, error)
	Delete(key string)
	Len() int
}
