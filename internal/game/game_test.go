package game

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/roam/internal/controller"
	"chosenoffset.com/roam/internal/overlay"
	"chosenoffset.com/roam/internal/render"
	"chosenoffset.com/roam/internal/scene"
)

type fakeImage struct {
	w, h  int
	fills int
}

func (i *fakeImage) Bounds() image.Rectangle { return image.Rect(0, 0, i.w, i.h) }
func (i *fakeImage) Size() (int, int) { return i.w, i.h }
func (i *fakeImage) Fill(clr color.Color) { i.fills++ }

type fakeRenderer struct {
	circles, rings, rects, lines int
	texts                        []string
}

func (r *fakeRenderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color) {
	r.circles++
}
func (r *fakeRenderer) StrokeCircle(dst render.Image, x, y, radius, sw float32, clr color.Color) {
	r.rings++
}
func (r *fakeRenderer) FillRect(dst render.Image, x, y, w, h float32, clr color.Color) { r.rects++ }
func (r *fakeRenderer) StrokeRect(dst render.Image, x, y, w, h, sw float32, clr color.Color) {
	r.rects++
}
func (r *fakeRenderer) StrokeLine(dst render.Image, x0, y0, x1, y1, sw float32, clr color.Color) {
	r.lines++
}
func (r *fakeRenderer) DrawText(dst render.Image, text string, x, y int, clr color.Color, scale float64) {
	r.texts = append(r.texts, text)
}
func (r *fakeRenderer) MeasureText(text string, scale float64) (int, int) {
	return len(text) * 6, 16
}

type fakeInput struct {
	held     map[render.Key]bool
	pressed  map[render.Key]bool
	released map[render.Key]bool
	focused  bool
}

func newFakeInput() *fakeInput {
	return &fakeInput{
		held:     map[render.Key]bool{},
		pressed:  map[render.Key]bool{},
		released: map[render.Key]bool{},
		focused:  true,
	}
}

func (f *fakeInput) press(k render.Key) {
	f.held[k] = true
	f.pressed[k] = true
}

func (f *fakeInput) release(k render.Key) {
	delete(f.held, k)
	f.released[k] = true
}

// endTick clears the one-tick transitions.
func (f *fakeInput) endTick() {
	f.pressed = map[render.Key]bool{}
	f.released = map[render.Key]bool{}
}

func (f *fakeInput) IsKeyPressed(k render.Key) bool { return f.held[k] }
func (f *fakeInput) IsKeyJustPressed(k render.Key) bool { return f.pressed[k] }
func (f *fakeInput) IsKeyJustReleased(k render.Key) bool { return f.released[k] }
func (f *fakeInput) IsFocused() bool { return f.focused }

func newTestGame(t *testing.T, ctx context.Context) (*Game, *fakeInput, *fakeRenderer) {
	t.Helper()
	driver, err := controller.New(scene.DefaultConfig(), nil, nil)
	require.NoError(t, err)

	im := newFakeInput()
	r := &fakeRenderer{}
	g := NewGame(ctx, driver, r, im, 800, 600, nil)
	t.Cleanup(g.Close)
	return g, im, r
}

func TestUpdateTicksDriverWithPolledKeys(t *testing.T) {
	g, im, _ := newTestGame(t, context.Background())

	im.press(render.KeyUp)
	require.NoError(t, g.Update())
	im.endTick()
	assert.InDelta(t, -0.04, g.Frame.Avatar.Velocity.Z(), 1e-12)

	require.NoError(t, g.Update())
	assert.Less(t, g.Frame.Avatar.Velocity.Z(), -0.04, "held key keeps accelerating")

	im.release(render.KeyUp)
	require.NoError(t, g.Update())
	im.endTick()
	assert.False(t, g.Driver.Sampler().Snapshot().Held("arrowup"))
	assert.Equal(t, uint64(3), g.Frame.Tick)
}

func TestFocusLossReleasesKeys(t *testing.T) {
	g, im, _ := newTestGame(t, context.Background())

	im.press(render.KeyD)
	require.NoError(t, g.Update())
	im.endTick()
	require.True(t, g.Driver.Sampler().Snapshot().Held("d"))

	im.focused = false
	require.NoError(t, g.Update())
	assert.False(t, g.Driver.Sampler().Snapshot().Held("d"))

	im.focused = true
	require.NoError(t, g.Update())
	assert.True(t, g.Driver.Sampler().Snapshot().Held("d"), "still-held keys come back with focus")
}

func TestCloseReleasesKeys(t *testing.T) {
	g, im, _ := newTestGame(t, context.Background())
	im.press(render.KeyW)
	require.NoError(t, g.Update())

	g.Close()
	assert.False(t, g.Driver.Sampler().Snapshot().Held("w"))
}

func TestRespawnKey(t *testing.T) {
	g, im, _ := newTestGame(t, context.Background())
	im.press(render.KeyS)
	for i := 0; i < 20; i++ {
		require.NoError(t, g.Update())
		im.endTick()
	}
	require.Greater(t, g.Frame.Avatar.Position.Z(), 1.0)

	im.release(render.KeyS)
	im.press(render.KeyR)
	require.NoError(t, g.Update())
	assert.Equal(t, mgl64.Vec3{0, 0.5, 0}, g.Frame.Avatar.Position)
	require.NotEmpty(t, g.Messages)
	assert.Equal(t, "Respawned", g.Messages[len(g.Messages)-1].Text)
}

func TestUpdateTerminatesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g, _, _ := newTestGame(t, ctx)
	require.NoError(t, g.Update())

	cancel()
	assert.ErrorIs(t, g.Update(), render.ErrTerminated)
}

func TestHandleEventDrivesPanel(t *testing.T) {
	g, _, _ := newTestGame(t, context.Background())

	g.HandleEvent(overlay.Event{Type: overlay.SectionOpened, ID: "about", Content: overlay.Content{Title: "About Me", Body: "Hi."}, IsFirst: true})
	content, ok := g.Panel()
	require.True(t, ok)
	assert.Equal(t, "About Me", content.Title)
	require.Len(t, g.Messages, 1)
	assert.Equal(t, "Discovered About Me", g.Messages[0].Text)

	g.HandleEvent(overlay.Event{Type: overlay.SectionClosed, ID: "about"})
	_, ok = g.Panel()
	assert.False(t, ok)
}

func TestMessagesExpire(t *testing.T) {
	g, _, _ := newTestGame(t, context.Background())
	g.ShowMessage("hello")
	for i := 0; i < 179; i++ {
		g.updateMessages(1.0 / 60.0)
	}
	assert.Len(t, g.messages(), 1)
	g.updateMessages(2.0 / 60.0)
	assert.Empty(t, g.messages())
}

func TestDrawScene(t *testing.T) {
	g, _, r := newTestGame(t, context.Background())
	g.Driver.Overlay().OnEvent = g.HandleEvent
	g.Driver.Overlay().Show("contact")
	require.NoError(t, g.Update())

	screen := &fakeImage{w: 800, h: 600}
	g.Draw(screen)

	assert.Equal(t, 1, screen.fills)
	assert.GreaterOrEqual(t, r.circles, 1+4+1+2, "platform, landmarks, avatar and eyes")
	assert.GreaterOrEqual(t, r.rects, 3, "ground, edge and panel")
	assert.Contains(t, r.texts, "Contact")
	assert.Contains(t, r.texts, "Press E to view projects")
}

func TestCameraProject(t *testing.T) {
	cam := FitCamera(800, 600, 45)
	x, y := cam.Project(mgl64.Vec3{0, 5, 0})
	assert.Equal(t, float32(400), x)
	assert.Equal(t, float32(300), y)

	x, y = cam.Project(mgl64.Vec3{45, 0, -45})
	assert.Greater(t, x, float32(400))
	assert.Less(t, y, float32(300), "forward is up the screen")
	assert.Less(t, float64(cam.Length(90)), 600.0)
}

func TestParseHexColor(t *testing.T) {
	assert.Equal(t, color.RGBA{0xF3, 0x81, 0x81, 0xFF}, parseHexColor("#F38181"))
	assert.Equal(t, defaultColor, parseHexColor("nope"))
	assert.Equal(t, defaultColor, parseHexColor(""))
}

func TestWrap(t *testing.T) {
	lines := wrap("one two three four five", 10)
	assert.Equal(t, []string{"one two", "three four", "five"}, lines)
	assert.Empty(t, wrap("", 20))
}
