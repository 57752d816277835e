/*
Package archive reads the content-addressable asset container that holds
map textures.

An archive root is a directory with two segments: index/ holds one or
more binary index files mapping (asset ID, quality tier) to stored
blobs, and data/ holds the blobs themselves, named by the blake3 digest
of their stored bytes and fanned out by the first two hex characters.
Blobs may be stored raw or zstd-compressed; multi-part assets resolve
to their parts in ascending part order.

Opening an archive parses every index file once; lookups after that are
map access, so resolving many assets against one handle never rescans
the index. The handle is safe for concurrent readers.
*/
package archive
