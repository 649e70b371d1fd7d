package models

import "strings"

const (
	inputHandlePrefix  = "input-"
	outputHandlePrefix = "output-"
)

// Edge connects two nodes. The handle names classify it: a handle
// containing "trigger" carries execution order only (control), while
// "input-<param>" / "output-<param>" handles carry a named value (data).
type Edge struct {
	Source       string `json:"source"`
	SourceHandle string `json:"source_handle,omitempty"`
	Target       string `json:"target"`
	TargetHandle string `json:"target_handle,omitempty"`
}

func isControlHandle(handle string) bool {
	return strings.Contains(handle, "trigger")
}

func isDataHandle(handle string) bool {
	return strings.HasPrefix(handle, inputHandlePrefix) || strings.HasPrefix(handle, outputHandlePrefix)
}

// IsControl reports whether the edge propagates execution order.
// An edge with no handles at all is treated as control, matching
// editors that omit handle names on plain trigger connections.
func (e Edge) IsControl() bool {
	if e.SourceHandle == "" && e.TargetHandle == "" {
		return true
	}
	return isControlHandle(e.SourceHandle) || isControlHandle(e.TargetHandle)
}

// IsData reports whether the edge propagates a named value.
func (e Edge) IsData() bool {
	return isDataHandle(e.SourceHandle) || isDataHandle(e.TargetHandle)
}

// MixesChannels reports whether the edge illegally connects a control
// handle to a data handle.
func (e Edge) MixesChannels() bool {
	return (isControlHandle(e.SourceHandle) && isDataHandle(e.TargetHandle)) ||
		(isDataHandle(e.SourceHandle) && isControlHandle(e.TargetHandle))
}

// SourceParam returns the output parameter name encoded in the source
// handle of a data edge ("output-amount" -> "amount").
func (e Edge) SourceParam() string {
	return strings.TrimPrefix(e.SourceHandle, outputHandlePrefix)
}

// TargetParam returns the input parameter name encoded in the target
// handle of a data edge ("input-x" -> "x").
func (e Edge) TargetParam() string {
	return strings.TrimPrefix(e.TargetHandle, inputHandlePrefix)
}
