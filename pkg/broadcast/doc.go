// Package broadcast provides type-safe fan-out of messages to multiple
// subscribers.
//
// Two implementations are included: MemoryBroadcaster for in-process delivery
// and RedisBroadcaster for distribution across instances via Redis pub/sub.
// Both drop messages for slow consumers instead of blocking the publisher,
// which suits real-time UI updates where only the latest state matters.
package broadcast
