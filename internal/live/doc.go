// Package live pushes sequencer snapshots to browsers and terminals over
// socket.io.
//
// # Events
//
//	zone:snapshot   server to client, a Message
//	zone:restart    client to server, no payload
//	zone:aggregate  client to server, a level name or {"level": name}
//
// A client receives the current snapshot as soon as it connects, then one
// message per state change.
package live
