package components

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/cascades/engine/math"
)

/**
 * @brief A perspective camera looking at a fixed target. The view and
 * projection matrices are rebuilt lazily when the camera is dirty.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/** @brief The point the camera looks at. */
	Target math.Vec3
	/** @brief Vertical field of view in radians. */
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32
	/** @brief Internal flag used to determine when the matrices need to be rebuilt. */
	IsDirty bool

	viewMatrix       math.Mat4
	projectionMatrix math.Mat4
}

func NewCamera(position, target math.Vec3, fovRadians, aspect, near, far float32) *Camera {
	return &Camera{
		Position: position,
		Target:   target,
		FOV:      fovRadians,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
		IsDirty:  true,
	}
}

func (c *Camera) GetPosition() math.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) SetTarget(target math.Vec3) {
	c.Target = target
	c.IsDirty = true
}

func (c *Camera) SetLens(fovRadians, aspect, near, far float32) {
	c.FOV = fovRadians
	c.Aspect = aspect
	c.Near = near
	c.Far = far
	c.IsDirty = true
}

func (c *Camera) rebuild() {
	if !c.IsDirty {
		return
	}
	c.viewMatrix = math.NewMat4LookAtLH(c.Position, c.Target, math.NewVec3(0, 1, 0))
	c.projectionMatrix = math.NewMat4PerspectiveLH(c.FOV, c.Aspect, c.Near, c.Far)
	c.IsDirty = false
}

func (c *Camera) GetView() math.Mat4 {
	c.rebuild()
	return c.viewMatrix
}

func (c *Camera) GetProjection() math.Mat4 {
	c.rebuild()
	return c.projectionMatrix
}

// Forward is the unit vector from the position to the target.
func (c *Camera) Forward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalized()
}

func (c *Camera) MoveForward(amount float32) {
	direction := c.Forward().MulScalar(amount)
	c.Position = c.Position.Add(direction)
	c.Target = c.Target.Add(direction)
	c.IsDirty = true
}

// Orbit rotates the position about the vertical axis through the target.
func (c *Camera) Orbit(radians float32) {
	offset := c.Position.Sub(c.Target)
	sin, cos := math32.Sin(radians), math32.Cos(radians)
	c.Position = c.Target.Add(math.NewVec3(
		offset.X*cos+offset.Z*sin,
		offset.Y,
		-offset.X*sin+offset.Z*cos,
	))
	c.IsDirty = true
}

func (c *Camera) Pitch(amount float32) {
	offset := c.Position.Sub(c.Target)
	horizontal := math32.Sqrt(offset.X*offset.X + offset.Z*offset.Z)
	angle := math32.Atan2(offset.Y, horizontal) + amount

	// Clamp to avoid Gimbal lock.
	limit := float32(1.55334306) // 89 degrees
	angle = math.Clamp(angle, -limit, limit)

	distance := offset.Length()
	scale := float32(0)
	if horizontal > 0 {
		scale = distance * math32.Cos(angle) / horizontal
	}
	c.Position = c.Target.Add(math.NewVec3(offset.X*scale, distance*math32.Sin(angle), offset.Z*scale))
	c.IsDirty = true
}
