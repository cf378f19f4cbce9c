// Package presence models the presence graph that roomwatch observes.
//
// A presence graph is a set of rooms and the entities currently in them. Each
// entity is in at most one room at a time. Every membership change is
// described by an Event:
//
//   - Joined: the entity entered a room while not being in any room
//   - Switched: the entity moved directly from one room to another
//   - Left: the entity left its room and is now in no room
//
// # Graph
//
// Graph is an in-memory presence graph. It resolves entity and room
// identities, answers "where is X" and moves entities on request. Every
// mutation emits the matching Event to the registered Handler, in call order,
// before the mutating call returns. Graph therefore acts both as the
// presence-event source and as the room-membership mutator of a deployment.
package presence
