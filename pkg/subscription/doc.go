// Package subscription implements the roomwatch subscription engine.
//
// Actors register time-bounded subscriptions on a tracked entity (member
// subscriptions) or on a room (room subscriptions). When the presence graph
// reports that an entity joined, switched or left a room, the engine matches
// the event against every live subscription and notifies the subscribers.
//
// # Subscription Kinds
//
//   - notify: one-shot member subscription, consumed by its first match
//   - follow: persistent member subscription, fires on every move until expiry
//   - follow --active: persistent, and also moves the requester into the
//     subject's new room
//   - vcnotify: persistent room subscription, fires when anyone enters (🔵)
//     or leaves (🔴) the room
//
// # Expiry
//
// A subscription is live while now < ExpiresAt. There is no background
// sweeper. Expiry is only noticed when an event or a stop command touches the
// subscription's key, so an expired subscription nobody touches again stays
// in memory for the life of the process.
//
// # Bulk Clear
//
// Removal is keyed, never per subscription. When any member subscription of
// an entity is consumed (one-shot match) or found expired, every member
// subscription of that entity is removed, including persistent ones owned by
// other requesters. Room subscriptions behave the same per room. A stop
// command removes all member subscriptions of its subject.
//
// # Ordering
//
// The engine handles one event or command at a time. The match plan for an
// event is computed from the registry as it was when handling started, and
// the registry is compacted once after all notifications for the event have
// been dispatched.
package subscription
