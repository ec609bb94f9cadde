// pkg/render/engo/renderer.go
package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-strut/pkg/render"
)

// primitive is one pooled drawable entity
type primitive struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// EngoRenderer implements render.Surface on top of the engo render system.
// Primitives are drawn by a pool of entities that is rewound every frame:
// entities left over from a busier frame are hidden, not removed.
type EngoRenderer struct {
	renderSystem *common.RenderSystem
	camera       *CameraSystem
	assets       *AssetManager

	pool []*primitive
	used int

	style render.Style
	depth float32
}

// NewEngoRenderer creates a renderer drawing through renderSystem as seen
// by camera
func NewEngoRenderer(renderSystem *common.RenderSystem, camera *CameraSystem, assets *AssetManager) *EngoRenderer {
	return &EngoRenderer{
		renderSystem: renderSystem,
		camera:       camera,
		assets:       assets,
		style:        render.DefaultStyle,
	}
}

// Begin rewinds the entity pool for a new frame
func (r *EngoRenderer) Begin() {
	if r.assets != nil {
		r.assets.Trim()
	}
	r.used = 0
	r.depth = 0
}

// End hides the entities not used this frame
func (r *EngoRenderer) End() {
	for _, p := range r.pool[r.used:] {
		p.Hidden = true
	}
}

// Used returns the number of primitives drawn since Begin
func (r *EngoRenderer) Used() int { return r.used }

// Close removes every pooled entity from the render system
func (r *EngoRenderer) Close() {
	for _, p := range r.pool {
		r.renderSystem.Remove(p.BasicEntity)
	}
	r.pool = nil
	r.used = 0
}

// Style implements render.Surface
func (r *EngoRenderer) Style() render.Style { return r.style }

// SetStyle implements render.Surface
func (r *EngoRenderer) SetStyle(s render.Style) { r.style = s }

// next hands out the next pooled entity, growing the pool when needed.
// Later primitives get a higher z index so they draw on top.
func (r *EngoRenderer) next() *primitive {
	if r.used == len(r.pool) {
		p := &primitive{BasicEntity: ecs.NewBasic()}
		p.Scale = engo.Point{X: 1, Y: 1}
		r.renderSystem.Add(&p.BasicEntity, &p.RenderComponent, &p.SpaceComponent)
		r.pool = append(r.pool, p)
	}
	p := r.pool[r.used]
	r.used++

	r.depth--
	p.Hidden = false
	p.Scale = engo.Point{X: 1, Y: 1}
	p.SetZIndex(zIndex(r.depth))
	return p
}

// zIndex turns a surface depth, which decreases towards the viewer, into
// an engo z index, which increases towards the viewer
func zIndex(depth float32) float32 { return -depth }

// Circle implements render.Surface
func (r *EngoRenderer) Circle(x, y, radius float32) {
	p := r.next()
	view := r.camera.View()
	p.SpaceComponent = circleSpace(view, x, y, radius)
	p.Drawable = common.Circle{
		BorderWidth: r.borderWidth(view),
		BorderColor: r.style.Stroke,
	}
	p.Color = r.style.Fill
}

// Line implements render.Surface
func (r *EngoRenderer) Line(x1, y1, x2, y2, width float32) {
	p := r.next()
	p.SpaceComponent = lineSpace(r.camera.View(), x1, y1, x2, y2, width)
	p.Drawable = common.Rectangle{}
	p.Color = r.style.Fill
}

// Rect implements render.Surface
func (r *EngoRenderer) Rect(x, y, w, h float32) {
	p := r.next()
	view := r.camera.View()
	p.SpaceComponent = rectSpace(view, x, y, w, h)
	p.Drawable = common.Rectangle{
		BorderWidth: r.borderWidth(view),
		BorderColor: r.style.Stroke,
	}
	p.Color = r.style.Fill
}

// Text implements render.Surface. Size is in pixels; (x, y) is the
// baseline start in render space.
func (r *EngoRenderer) Text(s string, x, y, size float32) {
	if s == "" || r.assets == nil {
		return
	}
	tex, ok := r.assets.Text(s, size)
	if !ok {
		return
	}
	p := r.next()
	sx, sy := r.camera.View().ToScreen(x, y)
	p.SpaceComponent = common.SpaceComponent{
		Position: engo.Point{X: float32(sx), Y: float32(sy) - size},
		Width:    tex.Width(),
		Height:   tex.Height(),
	}
	p.Drawable = tex
	p.Color = r.style.Fill
}

func (r *EngoRenderer) borderWidth(v render.View) float32 {
	if r.style.StrokeWidth <= 0 {
		return 0
	}
	return r.style.StrokeWidth * v.Zoom
}

// circleSpace returns the screen box of a circle centred on (x, y)
func circleSpace(v render.View, x, y, radius float32) common.SpaceComponent {
	sx, sy := v.ToScreen(x, y)
	r := radius * v.Zoom
	return common.SpaceComponent{
		Position: engo.Point{X: float32(sx) - r, Y: float32(sy) - r},
		Width:    2 * r,
		Height:   2 * r,
	}
}

// rectSpace returns the screen box of a rectangle whose lower-left corner
// is (x, y) in render space
func rectSpace(v render.View, x, y, w, h float32) common.SpaceComponent {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	sx, sy := v.ToScreen(x, y+h)
	return common.SpaceComponent{
		Position: engo.Point{X: float32(sx), Y: float32(sy)},
		Width:    w * v.Zoom,
		Height:   h * v.Zoom,
	}
}

// lineSpace returns a rotated rectangle covering the segment. Engo rotates
// a space clockwise in degrees about its position, so the position is the
// start point moved half the thickness against the segment normal.
func lineSpace(v render.View, x1, y1, x2, y2, width float32) common.SpaceComponent {
	sx1, sy1 := v.ToScreen(x1, y1)
	sx2, sy2 := v.ToScreen(x2, y2)
	dx, dy := sx2-sx1, sy2-sy1
	angle := math.Atan2(dy, dx)

	thick := float64(max(width*v.Zoom, 1))
	nx, ny := -math.Sin(angle), math.Cos(angle)
	return common.SpaceComponent{
		Position: engo.Point{
			X: float32(sx1 - nx*thick/2),
			Y: float32(sy1 - ny*thick/2),
		},
		Width:    float32(math.Hypot(dx, dy)),
		Height:   float32(thick),
		Rotation: float32(angle * 180 / math.Pi),
	}
}

// background is the window clear color
var background = color.RGBA{R: 24, G: 26, B: 32, A: 255}
