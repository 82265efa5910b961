package program

import (
	"vraster/internal/face"
	"vraster/internal/geom2"
)

// RenderableFace pairs a clippable face with the program that paints it
// and the face's bounding box. Produced by the area-geometry resolver and
// by per-tile splitting; consumed only by the rasterization scheduler.
type RenderableFace struct {
	Face    face.ClippableFace
	Program *Node
	Bounds  geom2.Bounds2
}
