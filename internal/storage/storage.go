package storage

import (
	"errors"
	"time"
)

// ErrWrongType is returned when a typed operation is applied to an
// existing entity of another type
var ErrWrongType = errors.New("operation against a key holding the wrong kind of value")

const (
	// TTLNotFound means that the key does not exist or is expired
	TTLNotFound int64 = -2
	// TTLNoExpiry means that the key exists but has no deadline
	TTLNoExpiry int64 = -1
)

// Store is the typed key-value storage contract.
//
// Every method is one atomic critical section; multi-key methods
// observe all named keys under a single lock acquisition. Expired
// entities are indistinguishable from absent ones on every path.
type Store interface {
	// Set stores value as a string under key, replacing any prior
	// entity regardless of type. ttl 0 clears any previous expiry.
	Set(key, value string, ttl time.Duration)

	// Get returns the string value. ok is false when the key is
	// absent or expired; ErrWrongType when it holds another type.
	Get(key string) (value string, ok bool, err error)

	// Delete removes the named keys, returning how many were present
	Delete(keys ...string) int64

	// Exists counts the present keys; a repeated key counts per occurrence
	Exists(keys ...string) int64

	// Expire sets the deadline of a present key to now+ttl; ttl 0
	// clears the deadline instead. Returns 1 on success, 0 when the
	// key is absent or expired.
	Expire(key string, ttl time.Duration) int64

	// TTL returns the remaining whole seconds, or the TTLNotFound /
	// TTLNoExpiry codes
	TTL(key string) int64

	// LPush/RPush append the values in argument order at the head or
	// tail, creating the list if needed. Returns the new length.
	LPush(key string, values ...string) (int64, error)
	RPush(key string, values ...string) (int64, error)

	// LPop/RPop remove and return the head or tail element.
	// ok is false when the list is absent, expired, empty, or the
	// key holds another type.
	LPop(key string) (string, bool)
	RPop(key string) (string, bool)

	// LLen returns the list length, 0 for absent keys
	LLen(key string) (int64, error)

	// LRange returns the elements between the normalized start and
	// stop indices, empty on absent, expired, or mistyped keys
	LRange(key string, start, stop int64) []string

	// HSet assigns field/value pairs, creating the hash if needed.
	// Returns the count of fields that did not exist before.
	HSet(key string, fieldValues ...string) (int64, error)

	// HGet returns the field value; ok is false when the key or
	// field is missing or the key holds another type
	HGet(key, field string) (string, bool)

	// HDel removes fields, returning how many existed
	HDel(key string, fields ...string) int64

	// HGetAll returns alternating field, value elements
	HGetAll(key string) []string

	// SAdd inserts members, creating the set if needed.
	// Returns the count of members newly added.
	SAdd(key string, members ...string) (int64, error)

	// SRem removes members, returning how many were present
	SRem(key string, members ...string) int64

	// SMembers returns the members in unspecified order
	SMembers(key string) []string

	// SCard returns the set cardinality, 0 for absent keys
	SCard(key string) int64

	// Len counts the non-expired keys
	Len() int64

	// FlushAll drops every key
	FlushAll()

	// DeleteExpired removes every expired entity, returning the count
	DeleteExpired() int
}
