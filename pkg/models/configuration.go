package models

import "time"

// Configuration is a versioned, validated settings blob bound to one canvas
// node. The payload is opaque beyond schema validation; Version records the
// schema version the payload was written under. Stored versions only move
// forward: loading an older version runs the migration chain before the
// payload is returned.
type Configuration struct {
	NodeID     string         `json:"node_id"     validate:"required"`
	WidgetType string         `json:"widget_type" validate:"required"`
	Payload    map[string]any `json:"payload"`
	Version    string         `json:"version"     validate:"required"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Clone returns a deep-enough copy of the configuration for handing to
// migration functions, so a failed chain never corrupts the stored payload.
func (c *Configuration) Clone() *Configuration {
	clone := *c
	clone.Payload = clonePayload(c.Payload)

	return &clone
}

func clonePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}

	out := make(map[string]any, len(payload))

	for k, v := range payload {
		if nested, ok := v.(map[string]any); ok {
			out[k] = clonePayload(nested)

			continue
		}

		if list, ok := v.([]any); ok {
			copied := make([]any, len(list))

			for i, item := range list {
				if nested, ok := item.(map[string]any); ok {
					copied[i] = clonePayload(nested)
				} else {
					copied[i] = item
				}
			}

			out[k] = copied

			continue
		}

		out[k] = v
	}

	return out
}
