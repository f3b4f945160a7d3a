package group_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/horde/internal/game/arena"
	"github.com/cory-johannsen/horde/internal/game/geom"
	"github.com/cory-johannsen/horde/internal/game/group"
)

func losSettings() group.LineOfSightSettings {
	return group.DefaultSettings().LineOfSight
}

func TestLineOfSight_WallBlocks(t *testing.T) {
	w, err := arena.NewWorld(arena.Box("wall", "Wall", 4.5, -1, 5.5, 1, 3))
	require.NoError(t, err)
	los := group.NewLineOfSightChecker(w, losSettings())
	assert.False(t, los.HasLineOfSight(geom.Vec3{}, geom.Vec3{X: 10}))
}

func TestLineOfSight_TargetColliderDoesNotBlock(t *testing.T) {
	w, err := arena.NewWorld(arena.Box("player", "Player", 4.5, -1, 5.5, 1, 3))
	require.NoError(t, err)
	los := group.NewLineOfSightChecker(w, losSettings())
	assert.True(t, los.HasLineOfSight(geom.Vec3{}, geom.Vec3{X: 10}))
}

func TestLineOfSight_ClearPath(t *testing.T) {
	w, err := arena.NewWorld(arena.Box("wall", "Wall", 4.5, 3, 5.5, 4, 3))
	require.NoError(t, err)
	los := group.NewLineOfSightChecker(w, losSettings())
	assert.True(t, los.HasLineOfSight(geom.Vec3{}, geom.Vec3{X: 10}))
}

func TestLineOfSight_ZeroDistanceSkipsRaycast(t *testing.T) {
	rays := &stubRays{ok: true, hit: geom.Hit{Tag: "Wall"}}
	los := group.NewLineOfSightChecker(rays, losSettings())
	assert.True(t, los.HasLineOfSight(geom.Vec3{X: 1}, geom.Vec3{X: 1.005}))
	assert.Equal(t, 0, rays.calls)
}

func TestLineOfSight_NilRaycasterSeesEverything(t *testing.T) {
	los := group.NewLineOfSightChecker(nil, losSettings())
	assert.True(t, los.HasLineOfSight(geom.Vec3{}, geom.Vec3{X: 10}))
}

func TestLineOfSight_EmptyTargetTagTreatsAnyHitAsBlocking(t *testing.T) {
	cfg := losSettings()
	cfg.TargetTag = ""
	los := group.NewLineOfSightChecker(&stubRays{ok: true}, cfg)
	assert.False(t, los.HasLineOfSight(geom.Vec3{}, geom.Vec3{X: 10}))
}

func TestLineOfSight_RaisesRayToEyeHeight(t *testing.T) {
	w, err := arena.NewWorld(arena.Box("crate", "Wall", 4.5, -1, 5.5, 1, 1))
	require.NoError(t, err)
	cfg := losSettings()
	cfg.EyeHeight = 1.6
	assert.True(t, group.NewLineOfSightChecker(w, cfg).HasLineOfSight(geom.Vec3{}, geom.Vec3{X: 10}))
	cfg.EyeHeight = 0.5
	assert.False(t, group.NewLineOfSightChecker(w, cfg).HasLineOfSight(geom.Vec3{}, geom.Vec3{X: 10}))
}
