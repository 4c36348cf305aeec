package game

import (
	"strings"

	"github.com/muesli/termenv"
)

// Render draws the board as two-character colored cells.
func (b *Board) Render() string {
	profile := termenv.ColorProfile()
	empty := termenv.String("  ").Background(profile.Color("#303030"))
	p1 := termenv.String("  ").Background(profile.Color("#005fd7"))
	p2 := termenv.String("  ").Background(profile.Color("#00af5f"))
	apple := termenv.String("  ").Background(profile.Color("#d70000"))

	var sb strings.Builder
	for y := 0; y < ArenaSize; y++ {
		for x := 0; x < ArenaSize; x++ {
			switch b.pixels[x+ArenaSize*y] {
			case P1:
				sb.WriteString(p1.String())
			case P2:
				sb.WriteString(p2.String())
			case Apple:
				sb.WriteString(apple.String())
			default:
				sb.WriteString(empty.String())
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
