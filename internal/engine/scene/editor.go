package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/event"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// EditableData is terrain data the editor can change in place.
type EditableData interface {
	terrain.Data
	SetHeight(x, z, h int) error
	SetType(x, z int, t terrain.TerrainType) error
}

// Tool is the edit applied to a clicked column.
type Tool int

// Edit tools.
const (
	ToolRaise Tool = iota
	ToolLower
	ToolPaint
)

func (t Tool) String() string {
	switch t {
	case ToolRaise:
		return "raise"
	case ToolLower:
		return "lower"
	case ToolPaint:
		return "paint"
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// TileEdited is published after a column changed and its chunks were rebuilt.
type TileEdited struct {
	Tile   terrain.TileCoord // top layer after the edit
	Tool   Tool
	Height int
	Type   terrain.TerrainType
}

// Editor applies tile edits to the world data and keeps the chunk meshes in
// step.
type Editor struct {
	tr        *TerrainRenderer
	data      EditableData
	tool      Tool
	paint     terrain.TerrainType
	maxHeight int
	edited    event.Bus[TileEdited]
}

// NewEditor returns an editor for the world tr was created from. Columns are
// never raised above maxHeight; zero means unbounded.
func NewEditor(tr *TerrainRenderer, data EditableData, maxHeight int) *Editor {
	return &Editor{tr: tr, data: data, maxHeight: maxHeight}
}

// SetTool selects the edit applied by the next click.
func (e *Editor) SetTool(t Tool) { e.tool = t }

// Tool returns the current tool.
func (e *Editor) Tool() Tool { return e.tool }

// SetPaint selects the type applied by ToolPaint and switches to it.
func (e *Editor) SetPaint(t terrain.TerrainType) {
	e.paint = t
	e.tool = ToolPaint
}

// OnTileEdited registers fn for edit notifications.
func (e *Editor) OnTileEdited(fn func(TileEdited)) event.Subscription {
	return e.edited.Subscribe(fn)
}

// Apply edits column (x, z) with the current tool and rebuilds the affected
// chunks. It reports false when the edit was a no-op.
func (e *Editor) Apply(x, z int) (bool, error) {
	if e.tr.grid == nil {
		return false, ErrNoWorld
	}
	if _, err := e.tr.grid.CoordForTile(x, z); err != nil {
		return false, err
	}
	h := e.data.HeightAt(x, z)
	t := e.data.TypeAt(x, z)

	switch e.tool {
	case ToolRaise:
		if e.maxHeight > 0 && h >= e.maxHeight {
			return false, nil
		}
		h++
		if err := e.data.SetHeight(x, z, h); err != nil {
			return false, err
		}
	case ToolLower:
		if h == 0 {
			return false, nil
		}
		h--
		if err := e.data.SetHeight(x, z, h); err != nil {
			return false, err
		}
	case ToolPaint:
		if t == e.paint {
			return false, nil
		}
		t = e.paint
		if err := e.data.SetType(x, z, t); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("unknown tool %s", e.tool)
	}

	tile := terrain.TileCoord{X: x, Y: max(h-1, 0), Z: z}
	if err := e.tr.UpdateWorldMeshForTile(tile); err != nil {
		return false, fmt.Errorf("rebuild after %s: %w", e.tool, err)
	}

	logger.Debug("tile edited",
		zap.Stringer("tile", tile),
		zap.Stringer("tool", e.tool),
		zap.Int("height", h),
		zap.Stringer("type", t),
	)
	e.edited.Publish(TileEdited{Tile: tile, Tool: e.tool, Height: h, Type: t})
	return true, nil
}

// HandleTileClicked applies the current tool to a picked tile. It is meant
// to be subscribed to a picking.Controller.
func (e *Editor) HandleTileClicked(ev picking.TileClicked) {
	if _, err := e.Apply(ev.X, ev.Z); err != nil {
		logger.Warn("tile edit failed",
			zap.Int("x", ev.X),
			zap.Int("z", ev.Z),
			zap.Error(err),
		)
	}
}
