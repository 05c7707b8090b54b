package scriptgraph

// LinkRef identifies the far end of a connection
type LinkRef struct {
	NodeID string `json:"node_id"`
	Port   string `json:"port"`
}

// Port is a typed connection point on a node. Ports are owned by their
// node and rebuilt whenever the node's configuration changes; callers
// must not hold onto a *Port across a ReconstructPorts call.
type Port struct {
	Name         string    `json:"name"`
	Direction    Direction `json:"direction"`
	Type         PinType   `json:"type"`
	DefaultValue string    `json:"default_value,omitempty"`
	Tooltip      string    `json:"tooltip,omitempty"`
	Hidden       bool      `json:"hidden,omitempty"`
	Advanced     bool      `json:"advanced,omitempty"`
	Links        []LinkRef `json:"links,omitempty"`
}

// Connected reports whether the port has at least one live connection
func (p *Port) Connected() bool {
	return len(p.Links) > 0
}

// IsInput reports whether the port accepts data
func (p *Port) IsInput() bool {
	return p.Direction == DirectionInput
}

func (p *Port) addLink(ref LinkRef) {
	for _, l := range p.Links {
		if l == ref {
			return
		}
	}
	p.Links = append(p.Links, ref)
}

func (p *Port) removeLink(ref LinkRef) {
	out := p.Links[:0]
	for _, l := range p.Links {
		if l != ref {
			out = append(out, l)
		}
	}
	p.Links = out
	if len(p.Links) == 0 {
		p.Links = nil
	}
}
