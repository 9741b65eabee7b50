//go:build sdl2

package sdl2

import (
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/veandco/go-sdl2/sdl"
)

// sdlKeyNames converts SDL keys to key names used in default mappings
var sdlKeyNames = map[sdl.Keycode]string{
	sdl.K_z:      "z",
	sdl.K_x:      "x",
	sdl.K_RETURN: "Enter",
	sdl.K_LSHIFT: "Shift",
	sdl.K_RSHIFT: "Shift",
	sdl.K_UP:     "Up",
	sdl.K_DOWN:   "Down",
	sdl.K_LEFT:   "Left",
	sdl.K_RIGHT:  "Right",
	sdl.K_w:      "w",
	sdl.K_a:      "a",
	sdl.K_s:      "s",
	sdl.K_d:      "d",
	sdl.K_SPACE:  "Space",
	sdl.K_p:      "p",
	sdl.K_o:      "o",
	sdl.K_F9:     "F9",
	sdl.K_ESCAPE: "Escape",
	sdl.K_q:      "q",
}

// keyMapping maps SDL keys to actions
var keyMapping = buildKeyMapping()

func buildKeyMapping() map[sdl.Keycode]action.Action {
	mapping := make(map[sdl.Keycode]action.Action)
	for key, name := range sdlKeyNames {
		if act, ok := input.GetDefaultMapping(name); ok {
			mapping[key] = act
		}
	}
	return mapping
}
