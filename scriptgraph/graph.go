package scriptgraph

import (
	"fmt"

	"github.com/c360/scriptbridge/errors"
)

// Graph is one canvas of nodes inside a script document. The graph owns
// its nodes and is the authority for structural validity: all wiring
// goes through Connect/Disconnect so both ends stay consistent.
type Graph struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Nodes []*Node `json:"nodes"`
}

// NewGraph creates an empty graph
func NewGraph(id, name string) *Graph {
	return &Graph{ID: id, Name: name}
}

// Node returns the node with the given ID
func (g *Graph) Node(id string) (*Node, error) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, errors.WrapNotFound(
		fmt.Errorf("node '%s': %w", id, errors.ErrNodeNotFound),
		"Graph", "Node", "node lookup")
}

// AddNode places a node on the graph
func (g *Graph) AddNode(n *Node) error {
	if n == nil {
		return errors.WrapInvalid(fmt.Errorf("node cannot be nil"), "Graph", "AddNode", "node validation")
	}
	if n.ID == "" {
		return errors.WrapInvalid(fmt.Errorf("node has empty ID"), "Graph", "AddNode", "node validation")
	}
	for _, existing := range g.Nodes {
		if existing.ID == n.ID {
			return errors.WrapInvalidState(
				fmt.Errorf("node '%s': %w", n.ID, errors.ErrDuplicateNode),
				"Graph", "AddNode", "duplicate node check")
		}
	}
	g.Nodes = append(g.Nodes, n)
	return nil
}

// RemoveNode removes a node and severs every connection touching it
func (g *Graph) RemoveNode(id string) error {
	node, err := g.Node(id)
	if err != nil {
		return err
	}
	for _, p := range node.Ports {
		for _, link := range p.Links {
			if far, farErr := g.Node(link.NodeID); farErr == nil {
				if farPort := far.Port(link.Port); farPort != nil {
					farPort.removeLink(LinkRef{NodeID: id, Port: p.Name})
				}
			}
		}
	}
	out := g.Nodes[:0]
	for _, n := range g.Nodes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	g.Nodes = out
	return nil
}

// FindPort locates a port by node ID and port name
func (g *Graph) FindPort(nodeID, portName string) (*Node, *Port, error) {
	node, err := g.Node(nodeID)
	if err != nil {
		return nil, nil, err
	}
	port := node.Port(portName)
	if port == nil {
		return nil, nil, errors.WrapNotFound(
			fmt.Errorf("port '%s' on node '%s': %w", portName, nodeID, errors.ErrPortNotFound),
			"Graph", "FindPort", "port lookup")
	}
	return node, port, nil
}

// Connect wires an output port to an input port. Both ends are updated;
// wiring the same pair twice is a no-op.
func (g *Graph) Connect(srcNodeID, srcPortName, dstNodeID, dstPortName string) error {
	srcNode, srcPort, err := g.FindPort(srcNodeID, srcPortName)
	if err != nil {
		return errors.Wrap(err, "Graph", "Connect", "source lookup")
	}
	dstNode, dstPort, err := g.FindPort(dstNodeID, dstPortName)
	if err != nil {
		return errors.Wrap(err, "Graph", "Connect", "target lookup")
	}
	if srcPort.Direction != DirectionOutput {
		return errors.WrapInvalidState(
			fmt.Errorf("port '%s' on node '%s' is not an output", srcPortName, srcNodeID),
			"Graph", "Connect", "direction check")
	}
	if dstPort.Direction != DirectionInput {
		return errors.WrapInvalidState(
			fmt.Errorf("port '%s' on node '%s': %w", dstPortName, dstNodeID, errors.ErrPortIsOutput),
			"Graph", "Connect", "direction check")
	}
	if !srcPort.Type.Compatible(dstPort.Type) {
		return errors.WrapInvalidState(
			fmt.Errorf("cannot wire %s to %s", srcPort.Type, dstPort.Type),
			"Graph", "Connect", "type check")
	}

	srcPort.addLink(LinkRef{NodeID: dstNode.ID, Port: dstPort.Name})
	dstPort.addLink(LinkRef{NodeID: srcNode.ID, Port: srcPort.Name})
	return nil
}

// Disconnect removes the wire between two ports, if present
func (g *Graph) Disconnect(srcNodeID, srcPortName, dstNodeID, dstPortName string) error {
	_, srcPort, err := g.FindPort(srcNodeID, srcPortName)
	if err != nil {
		return errors.Wrap(err, "Graph", "Disconnect", "source lookup")
	}
	_, dstPort, err := g.FindPort(dstNodeID, dstPortName)
	if err != nil {
		return errors.Wrap(err, "Graph", "Disconnect", "target lookup")
	}
	srcPort.removeLink(LinkRef{NodeID: dstNodeID, Port: dstPortName})
	dstPort.removeLink(LinkRef{NodeID: srcNodeID, Port: srcPortName})
	return nil
}

// Linked reports whether the given output port is wired to the given input port
func (g *Graph) Linked(srcNodeID, srcPortName, dstNodeID, dstPortName string) bool {
	_, srcPort, err := g.FindPort(srcNodeID, srcPortName)
	if err != nil {
		return false
	}
	for _, l := range srcPort.Links {
		if l.NodeID == dstNodeID && l.Port == dstPortName {
			return true
		}
	}
	return false
}
