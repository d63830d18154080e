// Package projection reduces high-dimensional embedding vectors to 3D
// coordinates. The reduction algorithm itself is a black box behind the
// Reducer interface; the package fixes the parameters that materially change
// output topology (neighborhood size, target dimensionality, minimum
// distance) so layouts are reproducible for identical input.
package projection
