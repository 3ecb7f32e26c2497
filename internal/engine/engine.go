package engine

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/scrawl/internal/canvas"
)

// Tool selects what pointer gestures mean.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolPan    Tool = "pan"
	ToolRect   Tool = "rect"
	ToolCircle Tool = "circle"
	ToolLine   Tool = "line"
	ToolArrow  Tool = "arrow"
	ToolPencil Tool = "pencil"
	ToolText   Tool = "text"
	ToolErase  Tool = "erase"
)

// OpSender delivers an operation to the room's peers. The connection
// behind it must already be open when the engine is constructed;
// operations are never queued against a pending connection.
type OpSender interface {
	Send(op canvas.Operation) error
}

// PromptFunc asks the user for text input. Returning false cancels the
// gesture. The text tool uses it on pointer-down.
type PromptFunc func() (string, bool)

// Engine turns pointer and wheel input into canonical drawing operations
// and renders the current shape set under the view transform. All state
// lives on the struct; there is no hidden handler binding, and Close
// releases the remote-op subscription the engine acquired at Subscribe.
type Engine struct {
	mu sync.Mutex

	shapes []canvas.Shape
	view   ViewTransform

	tool     Tool
	color    string
	fontSize float64

	width  int
	height int

	// Transient gesture state.
	panning  bool
	lastX    float64 // screen-space, pan/move anchor
	lastY    float64
	dragging bool
	originX  float64 // room-space drag origin for shape tools
	originY  float64
	curX     float64 // room-space current drag point (preview)
	curY     float64
	moveID   string // ID of the shape being moved, empty when idle

	sender OpSender
	prompt PromptFunc

	done chan struct{}
	wg   sync.WaitGroup
}

// New constructs an engine over an open connection, seeded with the
// room's reconstructed shape list (the REST read endpoint's result).
func New(width, height int, seed []canvas.Shape, sender OpSender) *Engine {
	return &Engine{
		shapes:   append([]canvas.Shape(nil), seed...),
		view:     NewViewTransform(),
		tool:     ToolSelect,
		color:    canvas.DefaultColor,
		fontSize: 16,
		width:    width,
		height:   height,
		sender:   sender,
		done:     make(chan struct{}),
	}
}

func (e *Engine) SetTool(t Tool)         { e.mu.Lock(); e.tool = t; e.mu.Unlock() }
func (e *Engine) SetColor(c string)      { e.mu.Lock(); e.color = c; e.mu.Unlock() }
func (e *Engine) SetFontSize(px float64) { e.mu.Lock(); e.fontSize = px; e.mu.Unlock() }
func (e *Engine) SetPrompt(p PromptFunc) { e.mu.Lock(); e.prompt = p; e.mu.Unlock() }

// View returns the current pan/zoom lens.
func (e *Engine) View() ViewTransform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// Shapes returns a copy of the current shape list.
func (e *Engine) Shapes() []canvas.Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]canvas.Shape(nil), e.shapes...)
}

// Subscribe applies remote operations from ops until the channel closes or
// Close is called. Call at most once.
func (e *Engine) Subscribe(ops <-chan canvas.Operation) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			select {
			case <-e.done:
				return
			case op, ok := <-ops:
				if !ok {
					return
				}
				e.ApplyRemote(op)
			}
		}
	}()
}

// Close releases the subscription started by Subscribe. The engine must be
// reconstructed against a fresh connection after a disconnect.
func (e *Engine) Close() {
	close(e.done)
	e.wg.Wait()
}

// ApplyRemote folds one peer operation into the shape list. Re-applying
// the engine's own broadcast echo is harmless: draws replace by ID.
func (e *Engine) ApplyRemote(op canvas.Operation) {
	e.mu.Lock()
	e.shapes = canvas.Apply(e.shapes, op)
	e.mu.Unlock()
}

// PointerDown begins a gesture at the screen-space point (sx, sy).
func (e *Engine) PointerDown(sx, sy float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rx, ry := e.view.ToRoom(sx, sy)

	switch e.tool {
	case ToolPan:
		e.panning = true
		e.lastX, e.lastY = sx, sy

	case ToolErase:
		i := canvas.HitTest(e.shapes, rx, ry)
		if i < 0 {
			return
		}
		op := canvas.DeleteOp(e.shapes[i].ID)
		e.shapes = canvas.Apply(e.shapes, op)
		e.send(op)

	case ToolSelect:
		i := canvas.HitTest(e.shapes, rx, ry)
		if i < 0 {
			return
		}
		e.moveID = e.shapes[i].ID
		e.lastX, e.lastY = sx, sy

	case ToolText:
		if e.prompt == nil {
			return
		}
		content, ok := e.prompt()
		if !ok || content == "" {
			return
		}
		op := canvas.DrawOp(canvas.TextAt(rx, ry, content, e.fontSize, e.color))
		e.shapes = canvas.Apply(e.shapes, op)
		e.send(op)

	case ToolRect, ToolCircle, ToolLine, ToolArrow, ToolPencil:
		e.dragging = true
		e.originX, e.originY = rx, ry
		e.curX, e.curY = rx, ry
	}
}

// PointerMove continues the active gesture. Moving a shape mutates it
// locally without network traffic; the corrected copy goes out on release.
func (e *Engine) PointerMove(sx, sy float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.panning:
		e.view = e.view.Pan(sx-e.lastX, sy-e.lastY)
		e.lastX, e.lastY = sx, sy

	case e.moveID != "":
		// A remote delete or clear may have taken the shape mid-gesture;
		// that cancels the move.
		i := canvas.IndexByID(e.shapes, e.moveID)
		if i < 0 {
			e.moveID = ""
			return
		}
		dx := (sx - e.lastX) / e.view.Scale
		dy := (sy - e.lastY) / e.view.Scale
		e.shapes[i] = e.shapes[i].Translate(dx, dy)
		e.lastX, e.lastY = sx, sy

	case e.dragging:
		e.curX, e.curY = e.view.ToRoom(sx, sy)
	}
}

// PointerUp finalizes the active gesture. New shapes below the minimum
// drag size are silently discarded.
func (e *Engine) PointerUp(sx, sy float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.panning:
		e.panning = false

	case e.moveID != "":
		// Peers get the shape's final state as a draw; their reduce
		// replaces the original by ID. Nothing goes out if a remote
		// delete or clear took the shape mid-gesture.
		if i := canvas.IndexByID(e.shapes, e.moveID); i >= 0 {
			e.send(canvas.DrawOp(e.shapes[i]))
		}
		e.moveID = ""

	case e.dragging:
		e.dragging = false
		rx, ry := e.view.ToRoom(sx, sy)

		var shape canvas.Shape
		ok := true
		switch e.tool {
		case ToolRect:
			shape, ok = canvas.RectFromDrag(e.originX, e.originY, rx, ry, e.color)
		case ToolCircle:
			shape, ok = canvas.CircleFromDrag(e.originX, e.originY, rx, ry, e.color)
		case ToolLine, ToolArrow, ToolPencil:
			shape = canvas.SegmentFromDrag(canvas.ShapeType(e.tool), e.originX, e.originY, rx, ry, e.color)
		default:
			ok = false
		}
		if !ok {
			return
		}

		op := canvas.DrawOp(shape)
		e.shapes = canvas.Apply(e.shapes, op)
		e.send(op)
	}
}

// Wheel zooms around the pointer. factor > 1 zooms in.
func (e *Engine) Wheel(sx, sy, factor float64) {
	e.mu.Lock()
	e.view = e.view.Zoom(factor, sx, sy)
	e.mu.Unlock()
}

// ClearAll empties the local shape list and broadcasts a clear.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shapes = e.shapes[:0]
	e.send(canvas.ClearOp())
}

// send forwards an operation to peers. Delivery failure is logged and
// otherwise ignored; the local edit already happened and replay on
// reconnect restores consistency.
func (e *Engine) send(op canvas.Operation) {
	if err := e.sender.Send(op); err != nil {
		log.Warn().Err(err).Str("kind", string(op.Kind)).Msg("engine: send operation")
	}
}
