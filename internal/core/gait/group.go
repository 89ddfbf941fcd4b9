package gait

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidGroup = errors.New("invalid movement group")

// Group is one of the two alternating movement groups. The zero value is Group1;
// no other values exist.
type Group struct {
	second bool
}

var (
	Group1 = Group{}
	Group2 = Group{second: true}
)

// Other returns the opposite group.
func (g Group) Other() Group {
	return Group{second: !g.second}
}

// Number is 1 or 2.
func (g Group) Number() int {
	if g.second {
		return 2
	}
	return 1
}

func (g Group) String() string {
	return fmt.Sprintf("group%d", g.Number())
}

// ParseGroup accepts "1", "2", "group1" or "group2".
func ParseGroup(s string) (Group, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "group") {
	case "1":
		return Group1, nil
	case "2":
		return Group2, nil
	default:
		return Group1, fmt.Errorf("%w: %q", ErrInvalidGroup, s)
	}
}

// GroupFromNumber maps 1 and 2 to their groups.
func GroupFromNumber(n int) (Group, error) {
	switch n {
	case 1:
		return Group1, nil
	case 2:
		return Group2, nil
	default:
		return Group1, fmt.Errorf("%w: %d", ErrInvalidGroup, n)
	}
}

func (g Group) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprint(g.Number())), nil
}

func (g *Group) UnmarshalText(text []byte) error {
	parsed, err := ParseGroup(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
