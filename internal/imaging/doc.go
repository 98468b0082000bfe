// Package imaging provides the image operations behind cover art
// display: decoding, thumbnail scaling, placeholder generation, and
// PNG output.
//
// All scaling uses Catmull-Rom interpolation for quality. Artwork is
// only ever scaled down; small images pass through untouched.
package imaging
