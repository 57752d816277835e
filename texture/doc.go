/*
Package texture implements the MTEX compressed-texture container used by
the map-asset pipeline: read a header, locate the largest mip level, and
decode it into an RGBA pixel buffer.

An MTEX file stores a fixed header, an optional 256-entry color table,
then a block table and block bodies per mipmap level (largest to
smallest). Bodies may be uncompressed (COPY) or LZ4 compressed as a
chunk stream with a rolling 64KB dictionary. Three pixel-storage
families exist: palette-indexed, block-compressed (4x4 endpoint
interpolation, three alpha sub-variants) and photographic (an embedded
JPEG stream per mip). Whatever the source family, decoding always
yields RGBA8.

The package focuses on practical workflows: read config, decode the
largest level into RGBA, and write containers for any family with an
optional mip chain.
*/
package texture
