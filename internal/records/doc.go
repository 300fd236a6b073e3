// Package records holds the typed record collections of the application:
// the user session, uploaded sample files, analysis results and projects.
//
// Every collection is a whole JSON document under a fixed key in a
// docstore.Store. Mutations are read-modify-write of the full document,
// serialized per service by a mutex. There is no validation beyond presence
// checks and closed enumerations at the boundary.
package records
