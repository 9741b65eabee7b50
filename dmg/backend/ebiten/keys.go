//go:build ebiten

package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/input/action"
)

var ebitenKeyNames = map[ebiten.Key]string{
	ebiten.KeyZ:          "z",
	ebiten.KeyX:          "x",
	ebiten.KeyEnter:      "Enter",
	ebiten.KeyShiftLeft:  "Shift",
	ebiten.KeyShiftRight: "Shift",
	ebiten.KeyArrowUp:    "Up",
	ebiten.KeyArrowDown:  "Down",
	ebiten.KeyArrowLeft:  "Left",
	ebiten.KeyArrowRight: "Right",
	ebiten.KeyW:          "w",
	ebiten.KeyA:          "a",
	ebiten.KeyS:          "s",
	ebiten.KeyD:          "d",
	ebiten.KeySpace:      "Space",
	ebiten.KeyP:          "p",
	ebiten.KeyO:          "o",
	ebiten.KeyEscape:     "Escape",
	ebiten.KeyQ:          "q",
}

// F9 snapshots are handled in Draw, where the frame is at hand.
var keyMapping = buildKeyMapping()

func buildKeyMapping() map[ebiten.Key]action.Action {
	mapping := make(map[ebiten.Key]action.Action)
	for key, name := range ebitenKeyNames {
		if act, ok := input.GetDefaultMapping(name); ok {
			mapping[key] = act
		}
	}
	return mapping
}
