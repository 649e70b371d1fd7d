package models

// NodeKind distinguishes the single trigger entry point from agent nodes.
type NodeKind string

const (
	TriggerNode NodeKind = "trigger"
	AgentNode   NodeKind = "agent"
)

// InputSource tells where a configured input value comes from.
type InputSource string

const (
	ManualSource     InputSource = "manual"
	ConnectionSource InputSource = "connection"
)

// ParamType tags a declared parameter so manual values can be coerced.
type ParamType string

const (
	StringParam  ParamType = "string"
	NumberParam  ParamType = "number"
	BooleanParam ParamType = "boolean"
	JSONParam    ParamType = "json"
)

// Parameter describes one declared input or output of an agent node.
type Parameter struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Optional    bool      `json:"optional,omitempty"` // inputs are required unless flagged
}

// InputValue is a configured value for one input parameter.
type InputValue struct {
	Value  string      `json:"value"`
	Source InputSource `json:"source"`
}

// Node is a single vertex of a workflow graph. Trigger nodes carry no
// agent configuration; agent nodes describe one external job service.
type Node struct {
	ID          string                `json:"id"`
	Kind        NodeKind              `json:"kind"`
	Label       string                `json:"label,omitempty"`
	AgentID     string                `json:"agent_id,omitempty"`
	AgentURL    string                `json:"agent_url,omitempty"` // base URL of the agent service
	Inputs      []Parameter           `json:"inputs,omitempty"`
	Outputs     []Parameter           `json:"outputs,omitempty"`
	InputValues map[string]InputValue `json:"input_values,omitempty"`
}

// Input returns the declared input parameter with the given name.
func (n Node) Input(name string) (Parameter, bool) {
	for _, p := range n.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Output returns the declared output parameter with the given name.
func (n Node) Output(name string) (Parameter, bool) {
	for _, p := range n.Outputs {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
