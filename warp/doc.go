// Package warp turns raw 3D projections into positions that resemble a
// bilateral, brain-like structure and fit inside a container ellipsoid. The
// two steps are independent: a pure per-point shape warp, and an
// ellipsoid-fit normalization over the whole point set that guarantees the
// containment invariant by construction.
package warp
