package redisledger

import (
	"context"
	"errors"

	"github.com/hmesh/presale-dashboard/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrEncodeFailed = errors.New("failed to encode value")
	ErrDecodeFailed = errors.New("failed to decode value")
)

// bucket stores msgpack encoded values of one type under a key prefix.
type bucket[T any] struct {
	client redis.Cmdable
	prefix string
}

func newBucket[T any](client redis.Cmdable, prefix string) *bucket[T] {
	return &bucket[T]{client: client, prefix: prefix}
}

func (b *bucket[T]) key(k string) string {
	return b.prefix + ":" + k
}

func (b *bucket[T]) get(ctx context.Context, k string) (T, error) {
	var zero T

	data, err := b.client.Get(ctx, b.key(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, repository.ErrNotFound
		}
		return zero, err
	}

	var value T
	if err := msgpack.Unmarshal(data, &value); err != nil {
		return zero, errors.Join(ErrDecodeFailed, err)
	}
	return value, nil
}

// entry is an encoded value waiting to be written.
type entry struct {
	key  string
	data []byte
}

func (b *bucket[T]) encode(k string, value T) (entry, error) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return entry{}, errors.Join(ErrEncodeFailed, err)
	}
	return entry{key: b.key(k), data: data}, nil
}
