package comp

// Geometry is a node's placement in the engine's native top-left-origin
// coordinate system: X/Y locate the node's top-left corner.
type Geometry struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Angle  float64 `json:"angle" yaml:"angle"`
}

// Centered is the same placement in the project's canvas-centered
// coordinate system: X/Y locate the node's center relative to the canvas
// center, with positive Y pointing down. Snapshots store this form so that
// resizing around a fixed center is a pure scale.
type Centered struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Angle  float64 `json:"angle" yaml:"angle"`
}

// ToNative converts a centered placement to the engine's top-left-origin
// system for a canvas of the given dimensions. Pure function of its
// arguments; exactly inverted by FromNative.
func ToNative(c Centered, canvasW, canvasH float64) Geometry {
	return Geometry{
		X:      canvasW/2 + c.X - c.Width/2,
		Y:      canvasH/2 + c.Y - c.Height/2,
		Width:  c.Width,
		Height: c.Height,
		Angle:  c.Angle,
	}
}

// FromNative converts an engine placement back to the canvas-centered
// system. Inverse of ToNative.
func FromNative(g Geometry, canvasW, canvasH float64) Centered {
	return Centered{
		X:      g.X + g.Width/2 - canvasW/2,
		Y:      g.Y + g.Height/2 - canvasH/2,
		Width:  g.Width,
		Height: g.Height,
		Angle:  g.Angle,
	}
}
