// Package assets loads the wireframe models drawn for the plane and the
// obstacle field. Loading runs off the frame loop; callers publish
// readiness through their own flags.
package assets

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

//go:embed models/*.toml
var embedded embed.FS

var (
	ErrUnknownModel = errors.New("unknown model")
	ErrInvalidModel = errors.New("invalid model")
)

// Model is a wireframe in model space, already scaled.
type Model struct {
	Name     string
	Vertices []mgl64.Vec3
	Edges    [][2]int
}

// modelFile mirrors the TOML layout of a model file.
type modelFile struct {
	Name     string      `toml:"name"`
	Scale    float64     `toml:"scale"`
	Vertices [][]float64 `toml:"vertices"`
	Edges    [][]int     `toml:"edges"`
}

// Loader reads models from a filesystem laid out as models/<name>.toml.
type Loader struct {
	fsys fs.FS
	log  zerolog.Logger
}

// NewLoader creates a loader over fsys. A nil fsys uses the embedded models.
func NewLoader(fsys fs.FS, log zerolog.Logger) *Loader {
	if fsys == nil {
		fsys = embedded
	}
	return &Loader{fsys: fsys, log: log}
}

// Load reads and decodes the named model.
func (l *Loader) Load(ctx context.Context, name string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(l.fsys, path.Join("models", name+".toml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
		}
		return nil, fmt.Errorf("failed to read model %s: %w", name, err)
	}

	var mf modelFile
	if err := toml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", name, err)
	}
	return mf.build(name)
}

// LoadAsync loads the named model on its own goroutine and hands the
// result to done. Failures are logged here as well, since the caller
// only learns about them through its readiness flag.
func (l *Loader) LoadAsync(ctx context.Context, name string, done func(*Model, error)) {
	go func() {
		m, err := l.Load(ctx, name)
		if err != nil {
			l.log.Error().Err(err).Str("model", name).Msg("asset load failed")
		} else {
			l.log.Debug().Str("model", name).Int("vertices", len(m.Vertices)).Msg("asset loaded")
		}
		done(m, err)
	}()
}

func (mf modelFile) build(name string) (*Model, error) {
	scale := mf.Scale
	if scale == 0 {
		scale = 1
	}
	if mf.Name != "" {
		name = mf.Name
	}

	m := &Model{
		Name:     name,
		Vertices: make([]mgl64.Vec3, 0, len(mf.Vertices)),
		Edges:    make([][2]int, 0, len(mf.Edges)),
	}
	for i, v := range mf.Vertices {
		if len(v) != 3 {
			return nil, fmt.Errorf("%w: %s vertex %d has %d components", ErrInvalidModel, name, i, len(v))
		}
		m.Vertices = append(m.Vertices, mgl64.Vec3{v[0], v[1], v[2]}.Mul(scale))
	}
	for i, e := range mf.Edges {
		if len(e) != 2 {
			return nil, fmt.Errorf("%w: %s edge %d has %d endpoints", ErrInvalidModel, name, i, len(e))
		}
		for _, idx := range e {
			if idx < 0 || idx >= len(m.Vertices) {
				return nil, fmt.Errorf("%w: %s edge %d references vertex %d", ErrInvalidModel, name, i, idx)
			}
		}
		m.Edges = append(m.Edges, [2]int{e[0], e[1]})
	}
	return m, nil
}
