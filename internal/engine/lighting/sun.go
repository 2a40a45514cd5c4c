// Package lighting describes the directional sun that lights the terrain.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sun is a directional light placed by compass angles.
type Sun struct {
	Longitude float32 // rotation around Y, degrees
	Latitude  float32 // elevation above the horizon, degrees
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
}

// DefaultSun returns a warm afternoon sun.
func DefaultSun() Sun {
	return Sun{
		Longitude: 215,
		Latitude:  60,
		Ambient:   mgl32.Vec3{0.35, 0.35, 0.4},
		Diffuse:   mgl32.Vec3{0.8, 0.78, 0.7},
	}
}

// ToSun returns the unit vector pointing from the ground towards the sun.
func (s Sun) ToSun() mgl32.Vec3 {
	lon := float64(mgl32.DegToRad(s.Longitude))
	lat := float64(mgl32.DegToRad(s.Latitude))
	return mgl32.Vec3{
		float32(math.Cos(lat) * math.Sin(lon)),
		float32(math.Sin(lat)),
		float32(math.Cos(lat) * math.Cos(lon)),
	}
}

// Direction returns the direction the light travels in.
func (s Sun) Direction() mgl32.Vec3 {
	return s.ToSun().Mul(-1)
}
