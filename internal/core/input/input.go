package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeusync/strider/internal/core/physics"
)

// Keys is the set of movement keys held during a frame.
type Keys uint8

const (
	KeyW Keys = 1 << iota
	KeyA
	KeyS
	KeyD
)

func (k Keys) Has(key Keys) bool { return k&key == key }

// Press returns k with key added.
func (k Keys) Press(key Keys) Keys { return k | key }

// Release returns k with key removed.
func (k Keys) Release(key Keys) Keys { return k &^ key }

func (k Keys) String() string {
	var b strings.Builder
	for _, e := range []struct {
		key Keys
		r   byte
	}{{KeyW, 'W'}, {KeyA, 'A'}, {KeyS, 'S'}, {KeyD, 'D'}} {
		if k.Has(e.key) {
			b.WriteByte(e.r)
		}
	}
	return b.String()
}

// FromRune maps a wasd character, in either case, to its key.
func FromRune(r rune) (Keys, bool) {
	switch r {
	case 'w', 'W':
		return KeyW, true
	case 'a', 'A':
		return KeyA, true
	case 's', 'S':
		return KeyS, true
	case 'd', 'D':
		return KeyD, true
	}
	return 0, false
}

var ErrUnknownKey = errors.New("unknown movement key")

// ParseKeys reads a string of wasd characters such as "wd".
func ParseKeys(s string) (Keys, error) {
	var keys Keys
	for _, r := range s {
		k, ok := FromRune(r)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownKey, r)
		}
		keys = keys.Press(k)
	}
	return keys, nil
}

// Vector converts held keys into a unit movement direction on the XZ plane.
// W moves along -Z, S along +Z, A along -X and D along +X. Opposite keys
// cancel; no keys gives the zero vector.
func Vector(k Keys) physics.Vec3 {
	var v physics.Vec3
	if k.Has(KeyW) {
		v[2] -= 1
	}
	if k.Has(KeyS) {
		v[2] += 1
	}
	if k.Has(KeyA) {
		v[0] -= 1
	}
	if k.Has(KeyD) {
		v[0] += 1
	}
	return physics.NormalizeOrZero(v)
}
