// pkg/editor/tool.go
package editor

import (
	"fmt"

	"github.com/opd-ai/go-strut/pkg/world"
)

// Tool is the part placed by a press
type Tool int

const (
	ToolNode Tool = iota
	ToolFixed
	ToolFixedX
	ToolFixedY
	ToolRotor
	ToolLink
	ToolRope
	ToolHydraulic
	ToolSpring
	ToolSelect
)

var toolNames = [...]string{
	"node", "fixed", "fixed-x", "fixed-y", "rotor",
	"link", "rope", "hydraulic", "spring", "select",
}

func (t Tool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// ParseTool returns the tool named s
func ParseTool(s string) (Tool, error) {
	for i, name := range toolNames {
		if name == s {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", s)
}

// Next cycles through the tools
func (t Tool) Next() Tool {
	return (t + 1) % Tool(len(toolNames))
}

// LinkKind returns the link kind placed by a link tool
func (t Tool) LinkKind() (world.Kind, bool) {
	switch t {
	case ToolLink:
		return world.KindLink, true
	case ToolRope:
		return world.KindRope, true
	case ToolHydraulic:
		return world.KindHydraulic, true
	case ToolSpring:
		return world.KindSpring, true
	}
	return 0, false
}

// placesNode reports whether a press on empty space adds a node
func (t Tool) placesNode() bool {
	return t <= ToolRotor
}
