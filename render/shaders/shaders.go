package shaders

import (
	_ "embed"
)

//go:embed leaf.wgsl
var LeafWGSL string
