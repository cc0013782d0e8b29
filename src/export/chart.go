// Package export lays still images of mounted charts out on a multi-page PDF,
// one chart per page, centred and aspect-ratio preserving.
package export

// Kind names the acquisition strategy of a chart handle.
type Kind int

const (
	// KindCanvas handles hand back pixels already painted, synchronously.
	KindCanvas Kind = iota
	// KindSurface handles render an off-screen copy and answer later.
	KindSurface
)

func (k Kind) String() string {
	if k == KindSurface {
		return "surface"
	}
	return "canvas"
}

// Snapshot is the outcome of one image acquisition. An empty PNG means the
// handle had nothing to give (unmounted, stale); Err carries why, if known.
type Snapshot struct {
	PNG []byte
	Err error
}

// CanvasSource produces the PNG of an on-screen canvas. ok is false when the
// canvas is not mounted.
type CanvasSource interface {
	SnapshotPNG() (png []byte, ok bool)
}

// SurfaceSource renders an off-screen PNG copy. The returned channel yields
// exactly one Snapshot; a nil channel means the source is not mounted.
type SurfaceSource interface {
	SnapshotPNGAsync() <-chan Snapshot
}

// Chart is a renderer handle tagged with its kind: either Canvas or Surface.
type Chart interface {
	Kind() Kind
	acquire() <-chan Snapshot
}

// Canvas wraps a canvas-backed handle.
type Canvas struct{ Source CanvasSource }

// Surface wraps a surface-backed handle.
type Surface struct{ Source SurfaceSource }

func (Canvas) Kind() Kind  { return KindCanvas }
func (Surface) Kind() Kind { return KindSurface }

func (c Canvas) acquire() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	if c.Source == nil {
		ch <- Snapshot{}
		return ch
	}
	b, ok := c.Source.SnapshotPNG()
	if !ok {
		b = nil
	}
	ch <- Snapshot{PNG: b}
	return ch
}

func (s Surface) acquire() <-chan Snapshot {
	if s.Source == nil {
		return nil
	}
	return s.Source.SnapshotPNGAsync()
}
