/*
Package pyramid slices a decoded texture into a multi-resolution tile
pyramid and writes it out behind an atomically finalized manifest.

Zoom level 0 is the source image at native resolution, partitioned into
fixed-size tiles; each deeper level is a 2x2 box-filtered halving of
the previous one, down to a single-tile grid inclusive. Edge tiles are
zero-padded, never cropped or stretched. Tiles encode independently
(PNG or JPEG) on a bounded worker pool, and the manifest only becomes
visible once every tile of every level is durably in place: the sink
stages the whole set and swaps it in as one rename, so a reader sees
either the previous complete pyramid or the new one, never a mixture.
*/
package pyramid
