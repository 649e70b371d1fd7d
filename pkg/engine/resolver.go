package engine

import (
	"encoding/json"
	"strconv"

	"github.com/ignatij/agentflow/pkg/models"
)

// Resolve determines the value of every declared input of an agent
// node. A connected input takes the upstream node's recorded output; an
// unconnected one falls back to its manually configured value, coerced
// to the declared parameter type. A required input with neither source
// fails resolution; an optional one is simply omitted from the payload.
//
// priorOutputs maps node id -> output name -> value for every node that
// already ran in this execution.
func Resolve(node models.Node, wf models.Workflow, priorOutputs map[string]map[string]interface{}) (map[string]interface{}, error) {
	connections := make(map[string]models.Edge)
	for _, e := range wf.DataEdgesInto(node.ID) {
		connections[e.TargetParam()] = e
	}

	resolved := make(map[string]interface{}, len(node.Inputs))
	for _, param := range node.Inputs {
		if edge, ok := connections[param.Name]; ok {
			outputs, ok := priorOutputs[edge.Source]
			if !ok {
				return nil, &MissingUpstreamOutputError{
					NodeID: node.ID, Input: param.Name,
					UpstreamID: edge.Source, Output: edge.SourceParam(),
				}
			}
			value, ok := outputs[edge.SourceParam()]
			if !ok {
				return nil, &MissingUpstreamOutputError{
					NodeID: node.ID, Input: param.Name,
					UpstreamID: edge.Source, Output: edge.SourceParam(),
				}
			}
			resolved[param.Name] = value
			continue
		}

		configured, ok := node.InputValues[param.Name]
		if ok && configured.Source == models.ManualSource && configured.Value != "" {
			value, err := coerce(node.ID, param, configured.Value)
			if err != nil {
				return nil, err
			}
			resolved[param.Name] = value
			continue
		}

		if !param.Optional {
			return nil, &MissingRequiredInputError{NodeID: node.ID, Input: param.Name}
		}
	}
	return resolved, nil
}

// coerce parses a manually configured string value per the declared
// parameter type. Unknown type tags pass the value through as a string.
func coerce(nodeID string, param models.Parameter, raw string) (interface{}, error) {
	switch param.Type {
	case models.NumberParam:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &TypeCoercionError{NodeID: nodeID, Input: param.Name, Value: raw, Type: string(param.Type), Cause: err}
		}
		return n, nil
	case models.BooleanParam:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &TypeCoercionError{NodeID: nodeID, Input: param.Name, Value: raw, Type: string(param.Type), Cause: err}
		}
		return b, nil
	case models.JSONParam:
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, &TypeCoercionError{NodeID: nodeID, Input: param.Name, Value: raw, Type: string(param.Type), Cause: err}
		}
		return v, nil
	default:
		return raw, nil
	}
}
