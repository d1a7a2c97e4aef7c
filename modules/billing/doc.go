// Package billing manages the subscription lifecycle against an external
// payment processor.
//
// Local billing state is a cache of the processor's last known truth. Every
// mutating transition performs the processor round-trip first and writes
// locally only after a confirmed response, so the application never presents
// a status the processor would reject. Synchronization writes are atomic
// across all four billing fields, and a monotonic guard keeps the current
// period end from ever moving backward for the same subscription.
//
// The package splits into a lifecycle controller (Service), a persistence
// contract (Store, with PostgreSQL and in-memory implementations), a
// processor contract (ProcessorClient, implemented for Stripe), a pure
// access policy (HasAccess), and a pure read model (BuildSnapshot).
package billing
