package generation

import (
	"encoding/json"
	"fmt"
)

// OperationHandle is a snapshot of a long-running video operation.
//
// The upstream is inconsistent about where it nests the result, so the raw
// envelope is kept and the result is located lazily by ResultURI.
type OperationHandle struct {
	Name  string
	Done  bool
	Error map[string]any

	envelope map[string]any
}

// DecodeOperation parses an operation JSON document from either poll channel.
func DecodeOperation(data []byte) (*OperationHandle, error) {
	var envelope map[string]any
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode operation: %w", err)
	}
	return NewOperationHandle(envelope), nil
}

// NewOperationHandle wraps an already decoded operation envelope.
func NewOperationHandle(envelope map[string]any) *OperationHandle {
	if envelope == nil {
		envelope = map[string]any{}
	}
	h := &OperationHandle{envelope: envelope}
	h.Name, _ = envelope["name"].(string)
	h.Done, _ = envelope["done"].(bool)
	if e, ok := envelope["error"].(map[string]any); ok && len(e) > 0 {
		h.Error = e
	}
	return h
}

// Terminal reports whether polling should stop.
func (h *OperationHandle) Terminal() bool {
	return h.Done || h.Error != nil
}

// resultLocation picks one candidate payload out of the envelope.
type resultLocation func(envelope map[string]any) map[string]any

// uriShape extracts a video URI from one candidate payload.
type uriShape func(payload map[string]any) (string, bool)

var resultLocations = []resultLocation{
	at("result"),
	at("response"),
	at("result", "value"),
	at("response", "value"),
}

var uriShapes = []uriShape{
	// SDK shape: {generatedVideos: [{video: {uri}}]}
	firstURI("generatedVideos", "video", "uri"),
	// REST shape: {generateVideoResponse: {generatedSamples: [{video: {uri}}]}}
	func(payload map[string]any) (string, bool) {
		inner, _ := payload["generateVideoResponse"].(map[string]any)
		return firstURI("generatedSamples", "video", "uri")(inner)
	},
	// REST shape already unwrapped: {generatedSamples: [{video: {uri}}]}
	firstURI("generatedSamples", "video", "uri"),
}

// ResultURI returns the first video URI found across every candidate
// location and shape.
func (h *OperationHandle) ResultURI() (string, bool) {
	for _, loc := range resultLocations {
		payload := loc(h.envelope)
		if payload == nil {
			continue
		}
		for _, shape := range uriShapes {
			if uri, ok := shape(payload); ok {
				return uri, true
			}
		}
	}
	return "", false
}

// FilterReason returns the first safety filter reason reported by any
// candidate location.
func (h *OperationHandle) FilterReason() (string, bool) {
	for _, loc := range resultLocations {
		payload := loc(h.envelope)
		if payload == nil {
			continue
		}
		if reason, ok := firstString(payload["raiMediaFilteredReasons"]); ok {
			return reason, true
		}
		if inner, ok := payload["generateVideoResponse"].(map[string]any); ok {
			if reason, ok := firstString(inner["raiMediaFilteredReasons"]); ok {
				return reason, true
			}
		}
	}
	return "", false
}

func at(path ...string) resultLocation {
	return func(envelope map[string]any) map[string]any {
		cur := envelope
		for _, key := range path {
			next, ok := cur[key].(map[string]any)
			if !ok {
				return nil
			}
			cur = next
		}
		return cur
	}
}

func firstURI(listKey, objectKey, uriKey string) uriShape {
	return func(payload map[string]any) (string, bool) {
		if payload == nil {
			return "", false
		}
		list, _ := payload[listKey].([]any)
		for _, item := range list {
			entry, _ := item.(map[string]any)
			obj, _ := entry[objectKey].(map[string]any)
			if uri, _ := obj[uriKey].(string); uri != "" {
				return uri, true
			}
		}
		return "", false
	}
}

func firstString(v any) (string, bool) {
	list, _ := v.([]any)
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}
