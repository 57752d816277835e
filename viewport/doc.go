// Package viewport resolves which tiles of a finalized pyramid a
// renderer needs for a given camera view. Resolution is pure geometry
// over the pyramid manifest; it never touches the filesystem.
package viewport
