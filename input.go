package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// keyInput maps action names to keyboard keys.
type keyInput struct {
	bindings map[string][]ebiten.Key
}

func newKeyInput(bindings map[string][]string) (*keyInput, error) {
	in := &keyInput{bindings: make(map[string][]ebiten.Key, len(bindings))}
	for action, names := range bindings {
		for _, name := range names {
			var k ebiten.Key
			if err := k.UnmarshalText([]byte(name)); err != nil {
				return nil, fmt.Errorf("input binding %s: key %q: %w", action, name, err)
			}
			in.bindings[action] = append(in.bindings[action], k)
		}
	}
	return in, nil
}

func (in *keyInput) Pressed(action string) bool {
	for _, k := range in.bindings[action] {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

func (in *keyInput) JustPressed(action string) bool {
	for _, k := range in.bindings[action] {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}
