// Package form builds multipart form bodies from declarative items.
//
// Items come in three kinds: text fields, files read from disk at
// composition time, and in-memory byte payloads such as rendered images.
// Independently built bodies can be merged with either last-writer-wins or
// suffix-renaming collision handling.
package form
