package nodeops

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/scriptgraph"
)

// gridSize is the canvas snap grid, in canvas units
const gridSize = 16

// SnapToGrid snaps a canvas position to the nearest grid intersection
func SnapToGrid(p scriptgraph.Position) scriptgraph.Position {
	return scriptgraph.Position{
		X: math.Round(p.X/gridSize) * gridSize,
		Y: math.Round(p.Y/gridSize) * gridSize,
	}
}

// InsertPassThrough places a reroute node between an output and an
// input port. The knot lands on the grid-snapped midpoint of the two
// owning nodes; an existing direct link between the ports is broken and
// replaced by the two-hop path through the knot.
func InsertPassThrough(g *scriptgraph.Graph, src, dst scriptgraph.LinkRef) (*scriptgraph.Node, error) {
	srcNode, srcPort, err := g.FindPort(src.NodeID, src.Port)
	if err != nil {
		return nil, err
	}
	dstNode, dstPort, err := g.FindPort(dst.NodeID, dst.Port)
	if err != nil {
		return nil, err
	}
	if srcPort.Direction != scriptgraph.DirectionOutput {
		return nil, errors.WrapInvalid(
			fmt.Errorf("source port %q is not an output", src.Port),
			"nodeops", "InsertPassThrough", "port direction check")
	}
	if dstPort.Direction != scriptgraph.DirectionInput {
		return nil, errors.WrapInvalid(
			fmt.Errorf("destination port %q is not an input", dst.Port),
			"nodeops", "InsertPassThrough", "port direction check")
	}

	mid := SnapToGrid(scriptgraph.Position{
		X: (srcNode.Position.X + dstNode.Position.X) / 2,
		Y: (srcNode.Position.Y + dstNode.Position.Y) / 2,
	})
	knot := scriptgraph.NewRerouteNode(mid)
	if err := g.AddNode(knot); err != nil {
		return nil, err
	}

	if g.Linked(src.NodeID, src.Port, dst.NodeID, dst.Port) {
		if err := g.Disconnect(src.NodeID, src.Port, dst.NodeID, dst.Port); err != nil {
			_ = g.RemoveNode(knot.ID)
			return nil, err
		}
	}
	if err := g.Connect(src.NodeID, src.Port, knot.ID, "input"); err != nil {
		_ = g.RemoveNode(knot.ID)
		return nil, err
	}
	if err := g.Connect(knot.ID, "output", dst.NodeID, dst.Port); err != nil {
		_ = g.RemoveNode(knot.ID)
		return nil, err
	}
	return knot, nil
}

// CreateReroutePath routes a connection through a chain of reroute
// knots, one per waypoint, each snapped to the grid. Individual segment
// failures are logged and skipped so a single bad waypoint degrades the
// path instead of aborting it; the returned slice holds every knot that
// was placed.
func CreateReroutePath(g *scriptgraph.Graph, src, dst scriptgraph.LinkRef,
	waypoints []scriptgraph.Position, logger *slog.Logger) ([]*scriptgraph.Node, error) {

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if len(waypoints) == 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("reroute path needs at least one waypoint"),
			"nodeops", "CreateReroutePath", "waypoint validation")
	}
	if _, _, err := g.FindPort(src.NodeID, src.Port); err != nil {
		return nil, err
	}
	if _, _, err := g.FindPort(dst.NodeID, dst.Port); err != nil {
		return nil, err
	}

	if g.Linked(src.NodeID, src.Port, dst.NodeID, dst.Port) {
		if err := g.Disconnect(src.NodeID, src.Port, dst.NodeID, dst.Port); err != nil {
			return nil, err
		}
	}

	knots := make([]*scriptgraph.Node, 0, len(waypoints))
	for _, wp := range waypoints {
		knot := scriptgraph.NewRerouteNode(SnapToGrid(wp))
		if err := g.AddNode(knot); err != nil {
			logger.Warn("skipping waypoint, knot could not be placed", "error", err)
			continue
		}
		knots = append(knots, knot)
	}
	if len(knots) == 0 {
		return nil, errors.WrapInternal(
			fmt.Errorf("no waypoint produced a knot"),
			"nodeops", "CreateReroutePath", "knot placement")
	}

	// Wire src -> k1 -> ... -> kn -> dst, logging and skipping any
	// segment the graph refuses.
	prevID, prevPort := src.NodeID, src.Port
	for _, knot := range knots {
		if err := g.Connect(prevID, prevPort, knot.ID, "input"); err != nil {
			logger.Warn("skipping path segment", "from", prevID, "to", knot.ID, "error", err)
			continue
		}
		prevID, prevPort = knot.ID, "output"
	}
	if err := g.Connect(prevID, prevPort, dst.NodeID, dst.Port); err != nil {
		logger.Warn("final path segment failed", "from", prevID, "error", err)
	}
	return knots, nil
}
