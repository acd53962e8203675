// Package leaves simulates a fixed-size pool of falling leaf sprites and
// produces the per-instance transforms drawn with one shared leaf mesh.
//
// A Pool is ticked once per frame with the frame delta and the camera's
// view-projection. Leaves that leave the bounds of the pool's BoundsMode are
// recycled in the same tick, so the published buffer always holds exactly
// as many entries as the pool was built with.
package leaves
