//go:build !ebiten

package ebiten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/video"
)

func TestStub(t *testing.T) {
	b := New()
	var _ backend.Backend = b
	var _ backend.Driver = b

	assert.ErrorIs(t, b.Init(backend.BackendConfig{}), ErrUnavailable)
	_, err := b.Update(video.NewFrameBuffer())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, b.Drive(nil), ErrUnavailable)
	assert.NoError(t, b.Cleanup())
}
