package leaffall

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gekko3d/leaffall/config"
	"github.com/gekko3d/leaffall/leaves"
	"github.com/go-gl/mathgl/mgl32"
)

// LeafGroup is one pool of leaves sharing a single atlas variant and mesh.
// The pool simulates in local space; Offset places the group in the world.
type LeafGroup struct {
	Variant   int
	Offset    mgl32.Vec3
	Mesh      AssetId
	Pool      *leaves.Pool
	Instances []leaves.Instance
}

// LeafField holds every leaf group of the scene.
type LeafField struct {
	Groups []*LeafGroup
	Paused bool

	// Stats sums the groups' counters for the last frame.
	Stats leaves.TickStats
	// Count is the total number of leaves across groups.
	Count int

	kind leaves.BoundsKind
}

// Radius is the radial volume radius, or 0 for camera-relative leaves.
func (f *LeafField) Radius() float32 {
	if len(f.Groups) == 0 {
		return 0
	}
	if m, ok := f.Groups[0].Pool.Mode().(leaves.RadialFloor); ok {
		return m.Radius
	}
	return 0
}

// SetRadius resizes every radial group and re-rolls its leaves. Resting
// leaves start falling again.
func (f *LeafField) SetRadius(radius float32) error {
	if f.kind != leaves.KindRadialFloor {
		return fmt.Errorf("radius applies to %s leaves, field is %s", leaves.KindRadialFloor, f.kind)
	}
	if !(radius > 0) {
		return fmt.Errorf("%w: %v", leaves.ErrInvalidRadius, radius)
	}
	var errs []error
	for _, g := range f.Groups {
		if err := g.Pool.SetRadius(radius); err != nil {
			errs = append(errs, fmt.Errorf("group %d: %w", g.Variant, err))
			continue
		}
		g.Instances = g.Pool.Instances()
	}
	return errors.Join(errs...)
}

// Reset re-rolls every group.
func (f *LeafField) Reset() error {
	var errs []error
	for _, g := range f.Groups {
		if err := g.Pool.Reset(); err != nil {
			errs = append(errs, fmt.Errorf("group %d: %w", g.Variant, err))
		}
	}
	return errors.Join(errs...)
}

// Tick advances every group once with the camera of its own frame.
func (f *LeafField) Tick(dt float32, rig *CameraRig) {
	f.Stats = leaves.TickStats{}
	for _, g := range f.Groups {
		g.Instances = g.Pool.Tick(dt, rig.CameraFor(g.Offset))
		s := g.Pool.Stats()
		f.Stats.Frame = s.Frame
		f.Stats.Respawned += s.Respawned
		f.Stats.Landed += s.Landed
		f.Stats.Resting += s.Resting
		f.Stats.Degraded += s.Degraded
	}
}

// GroupOffsets spaces n groups along x, centered the way the scene lays
// them out: n=8 with spacing 1 gives -4..3.
func GroupOffsets(n int, spacing float32) []mgl32.Vec3 {
	offsets := make([]mgl32.Vec3, n)
	for i := range offsets {
		offsets[i] = mgl32.Vec3{float32(i-n/2) * spacing, 0, 0}
	}
	return offsets
}

// LeavesModule builds one group per configured variant. It needs the camera
// rig and the asset server installed first.
type LeavesModule struct {
	Config config.LeavesConfig
	// Rand overrides the seeded source, mainly for tests.
	Rand leaves.RandomSource
}

func (mod LeavesModule) Install(app *App, cmd *Commands) {
	field, err := mod.build(app)
	if err != nil {
		app.Logger().Errorf("Leaves: %v", err)
		panic(fmt.Sprintf("leaves module: %v", err))
	}
	cmd.AddResources(field)
	cmd.UseSystem(System(leavesSystem).InStage(Update))

	app.Logger().Infof("Leaves: %d groups x %d (%s), %d meshes",
		len(field.Groups), mod.Config.Count, field.kind, mustAssets(app).MeshCount())
}

func mustAssets(app *App) *AssetServer {
	assets, ok := Resource[AssetServer](app)
	if !ok {
		panic("leaves module: AssetServerModule must be installed first")
	}
	return assets
}

func (mod LeavesModule) build(app *App) (*LeafField, error) {
	rig, ok := Resource[CameraRig](app)
	if !ok {
		return nil, errors.New("CameraModule must be installed first")
	}
	assets := mustAssets(app)

	cfg := config.Config{Leaves: mod.Config}
	mode, err := cfg.BoundsMode()
	if err != nil {
		return nil, err
	}

	rng := mod.Rand
	if rng == nil {
		seed := mod.Config.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
		app.Logger().Debugf("Leaves: seed %d", seed)
	}

	field := &LeafField{kind: mode.Kind()}
	offsets := GroupOffsets(len(mod.Config.Variants), mod.Config.GroupSpacing)
	for i, variant := range mod.Config.Variants {
		meshID, err := assets.LeafMesh(variant, mod.Config.Segments)
		if err != nil {
			return nil, err
		}
		pool, err := leaves.NewPool(leaves.Options{
			Count:  mod.Config.Count,
			Mode:   mode,
			Rand:   rng,
			Camera: rig.CameraFor(offsets[i]),
		})
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", variant, err)
		}
		field.Groups = append(field.Groups, &LeafGroup{
			Variant:   variant,
			Offset:    offsets[i],
			Mesh:      meshID,
			Pool:      pool,
			Instances: pool.Instances(),
		})
		field.Count += pool.Len()
	}
	return field, nil
}

func leavesSystem(t *Time, rig *CameraRig, field *LeafField, cmd *Commands) {
	if field.Paused {
		return
	}
	field.Tick(t.DtSeconds(), rig)
	if field.Stats.Degraded > 0 {
		cmd.Logger().Debugf("Leaves: %d of %d kept their previous state (dt %v, camera valid %v)",
			field.Stats.Degraded, field.Count, t.Dt, rig.Camera.Valid())
	}
}
