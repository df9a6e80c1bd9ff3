package physics

// ResolveTerrain snaps the player and every terrain-masked body onto the
// surface and refreshes their grounded flags. Running it twice in a row is a
// no-op the second time.
func (w *World) ResolveTerrain() {
	if _, grounded, ok := w.playerState(); ok {
		pos := w.player.PositionRef()
		vel := w.player.VelocityRef()
		*grounded = w.groundCheck(&pos.Y, &vel.Y, w.TerrainHeight(pos.X, pos.Z), 0)
	}

	for _, b := range w.bodies {
		if b.removed || !b.Mask.Has(GroupTerrain) {
			continue
		}
		b.Grounded = w.groundCheck(&b.Position.Y, &b.Velocity.Y, w.TerrainHeight(b.Position.X, b.Position.Z), b.Radius)
	}
}

// groundCheck compares the lower extent (y - offset) against the surface.
// Penetration snaps back and kills vertical speed; otherwise the body counts
// as grounded while it hovers within the tolerance band, so walking down a
// gentle slope does not flicker to airborne.
func (w *World) groundCheck(y, vy *float32, surface, offset float32) bool {
	bottom := *y - offset
	if bottom < surface {
		*y = surface + offset
		*vy = 0
		return true
	}
	return bottom-surface <= w.settings.GroundTolerance
}
