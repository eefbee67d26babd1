// Package kv is the durable key-value store behind the offline queue, the
// read-through cache and the non-secret profile data.
//
// Get returns (nil, nil) for a missing key; callers treat absence as a value.
package kv

import "context"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// DeleteMany removes all keys in one transaction: either every key is
	// gone or none is.
	DeleteMany(ctx context.Context, keys ...string) error
	// Keys lists the stored keys starting with prefix, in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
