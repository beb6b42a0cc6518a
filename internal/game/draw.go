package game

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/roam/internal/proximity"
	"chosenoffset.com/roam/internal/render"
)

var (
	backgroundColor = color.RGBA{0x87, 0xCE, 0xEB, 0xFF}
	groundColor     = color.RGBA{0x90, 0xEE, 0x90, 0xFF}
	edgeColor       = color.RGBA{0x2E, 0x7D, 0x32, 0xFF}
	platformColor   = color.RGBA{0xD4, 0xA5, 0x74, 0xFF}
	avatarColor     = color.RGBA{0xFF, 0xA5, 0x00, 0xFF}
	eyeColor        = color.RGBA{0x20, 0x20, 0x20, 0xFF}
	panelColor      = color.RGBA{0x00, 0x00, 0x00, 0xB0}
	defaultColor    = color.RGBA{0xCC, 0xCC, 0xCC, 0xFF}
)

// Draw renders the scene to the screen.
func (g *Game) Draw(screen render.Image) {
	w, h := screen.Size()
	cam := FitCamera(w, h, g.Driver.Boundary())

	screen.Fill(backgroundColor)
	g.drawGround(screen, cam)
	g.drawPlatform(screen, cam)
	g.drawLandmarks(screen, cam)
	g.drawAvatar(screen, cam)

	// UI on top
	g.drawPanel(screen)
	g.drawUI(screen)
	g.drawStatus(screen)
}

func (g *Game) drawGround(screen render.Image, cam Camera) {
	b := g.Driver.Boundary()
	x0, y0 := cam.Project(mgl64.Vec3{-b, 0, -b})
	side := cam.Length(2 * b)
	g.Renderer.FillRect(screen, x0, y0, side, side, groundColor)
	g.Renderer.StrokeRect(screen, x0, y0, side, side, 2, edgeColor)
}

func (g *Game) drawPlatform(screen render.Image, cam Camera) {
	pos, radius := g.Driver.Platform()
	x, y := cam.Project(pos)
	g.Renderer.FillCircle(screen, x, y, cam.Length(radius), platformColor)
	if g.Frame.NearPlatform && !g.Frame.Gallery {
		g.Renderer.DrawText(screen, "Press E to view projects", int(x)-70, int(y)+int(cam.Length(radius))+4, color.White, 1.0)
	}
}

func (g *Game) drawLandmarks(screen render.Image, cam Camera) {
	landmarks := g.Driver.Engine().Landmarks()
	glow := proximity.Glow(g.Frame.Elapsed)

	for i, l := range landmarks {
		x, y := cam.Project(l.Position)
		base := parseHexColor(l.Color)

		// Idle float reads as a slight size change from above
		phase := g.Frame.Elapsed*2 + float64(i)
		size := cam.Length(1.2 * (1 + proximity.Float(phase)*0.25))
		g.Renderer.FillCircle(screen, x, y, size, shade(base, 0.6+glow*0.4))

		if i < len(g.Frame.Cues) && g.Frame.Cues[i].ID == l.ID {
			cue := g.Frame.Cues[i]
			if cue.Ring.Visible {
				g.Renderer.StrokeCircle(screen, x, y, cam.Length(l.EnterRadius*cue.Ring.Scale), 3, withAlpha(base, cue.Ring.Opacity))
			}
			if cue.Beacon.Visible {
				g.Renderer.StrokeCircle(screen, x, y, size*float32(1+cue.Beacon.Height), 2, withAlpha(color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, cue.Beacon.Opacity))
			}
			if cue.Prompt.Visible {
				g.Renderer.DrawText(screen, "Press Esc to close", int(x)-50, int(y)+int(size)+18, withAlpha(color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, cue.Prompt.Opacity), 1.0)
			}
		}

		tw, _ := g.Renderer.MeasureText(l.Label, 1.0)
		g.Renderer.DrawText(screen, l.Label, int(x)-tw/2, int(y)-int(size)-16, color.White, 1.0)
	}
}

func (g *Game) drawAvatar(screen render.Image, cam Camera) {
	a := g.Frame.Avatar
	x, y := cam.Project(a.Position)
	r := cam.Length(0.8)
	g.Renderer.FillCircle(screen, x, y, r, avatarColor)

	// Heading: facing 0 looks along +Z, which is down the screen
	hx := x + float32(math.Sin(a.Facing))*r*1.6
	hy := y + float32(math.Cos(a.Facing))*r*1.6
	g.Renderer.StrokeLine(screen, x, y, hx, hy, 2, eyeColor)

	// Eyes squash to a thin line while blinking
	eye := float32(g.Frame.Pose.EyeScale) * r * 0.25
	ex := float32(math.Cos(a.Facing)) * r * 0.35
	ey := -float32(math.Sin(a.Facing)) * r * 0.35
	g.Renderer.FillCircle(screen, hx-(hx-x)*0.5+ex, hy-(hy-y)*0.5+ey, eye, eyeColor)
	g.Renderer.FillCircle(screen, hx-(hx-x)*0.5-ex, hy-(hy-y)*0.5-ey, eye, eyeColor)

	// Tail trails behind the heading and swings with the pose
	tailAngle := a.Facing + math.Pi + g.Frame.Pose.TailSwing
	tx := x + float32(math.Sin(tailAngle))*r*1.5
	ty := y + float32(math.Cos(tailAngle))*r*1.5
	g.Renderer.StrokeLine(screen, x, y, tx, ty, 3, avatarColor)

	// Bearing to the nearest landmark
	if g.Frame.Nearest != "" {
		bx := x + float32(math.Sin(g.Frame.Bearing))*r*3
		by := y + float32(math.Cos(g.Frame.Bearing))*r*3
		g.Renderer.StrokeLine(screen, x, y, bx, by, 1, withAlpha(color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, 0.4))
	}
}

func (g *Game) drawPanel(screen render.Image) {
	content, ok := g.Panel()
	if !ok {
		return
	}
	w, h := screen.Size()
	pw, ph := float32(w)*0.6, float32(120)
	px, py := (float32(w)-pw)/2, float32(h)-ph-20
	g.Renderer.FillRect(screen, px, py, pw, ph, panelColor)
	g.Renderer.DrawText(screen, content.Title, int(px)+12, int(py)+10, color.White, 1.0)
	for i, line := range wrap(content.Body, int(pw/6)-4) {
		g.Renderer.DrawText(screen, line, int(px)+12, int(py)+34+i*16, color.White, 1.0)
	}
}

func (g *Game) drawUI(screen render.Image) {
	// Draw on-screen messages
	y := 50.0
	for _, msg := range g.messages() {
		alpha := uint8(255 * (msg.TimeLeft / msg.MaxTime))
		g.Renderer.DrawText(screen, msg.Text, 20, int(y), color.RGBA{255, 255, 255, alpha}, 1.0)
		y += 20
	}
}

func (g *Game) drawStatus(screen render.Image) {
	a := g.Frame.Avatar
	status := fmt.Sprintf("pos %.1f, %.1f  speed %.2f  tick %d", a.Position.X(), a.Position.Z(), a.Speed(), g.Frame.Tick)
	if g.Frame.Nearest != "" {
		if rd, ok := g.Frame.Report.Reading(g.Frame.Nearest); ok {
			status += fmt.Sprintf("  nearest %s %.1f", g.Frame.Nearest, rd.Distance)
		}
	}
	g.Renderer.DrawText(screen, status, 20, 20, color.White, 1.0)
}

// parseHexColor parses "#RRGGBB". Anything else gives a neutral grey.
func parseHexColor(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return defaultColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return defaultColor
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xFF}
}

func shade(c color.RGBA, f float64) color.RGBA {
	f = mgl64.Clamp(f, 0, 1)
	return color.RGBA{uint8(float64(c.R) * f), uint8(float64(c.G) * f), uint8(float64(c.B) * f), c.A}
}

// withAlpha returns c at opacity a, premultiplied as image/color expects.
func withAlpha(c color.RGBA, a float64) color.RGBA {
	a = mgl64.Clamp(a, 0, 1)
	return color.RGBA{uint8(float64(c.R) * a), uint8(float64(c.G) * a), uint8(float64(c.B) * a), uint8(255 * a)}
}

// wrap splits text into lines of at most width characters.
func wrap(text string, width int) []string {
	if width < 10 {
		width = 10
	}
	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
