//go:build !ebiten

package ebiten

import (
	"errors"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/video"
)

// ErrUnavailable is returned when the binary was built without Ebiten support.
var ErrUnavailable = errors.New("ebiten backend not available, build with -tags ebiten to enable")

// Backend stub for when Ebiten is not compiled in
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(backend.BackendConfig) error {
	return ErrUnavailable
}

func (b *Backend) Update(*video.FrameBuffer) ([]backend.InputEvent, error) {
	return nil, ErrUnavailable
}

func (b *Backend) Drive(func([]backend.InputEvent) (*video.FrameBuffer, error)) error {
	return ErrUnavailable
}

func (b *Backend) Cleanup() error {
	return nil
}
