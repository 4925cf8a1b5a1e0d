package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// LinearWebhook is the envelope Linear posts for every entity change.
// Data stays raw until the envelope is known to describe an issue update.
type LinearWebhook struct {
	Type   string          `json:"type"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// LinearIssue is the subset of Linear's issue payload the engine reads.
type LinearIssue struct {
	ID            IssueID   `json:"id"`
	Title         string    `json:"title"`
	State         *NamedRef `json:"state"`
	Assignee      *NamedRef `json:"assignee"`
	Estimate      *float64  `json:"estimate"`
	Priority      *Priority `json:"priority"`
	PriorityLabel string    `json:"priorityLabel"`
}

// IssueID accepts a string or a number. Any other JSON value decodes to an empty id,
// which the validator reports as a missing task id.
type IssueID string

// UnmarshalJSON keeps numbers in their literal form ("123").
func (id *IssueID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = IssueID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = IssueID(n.String())
		return nil
	}
	*id = ""
	return nil
}

// NamedRef is a nested {"name": ...} object (state, assignee).
type NamedRef struct {
	Name string `json:"name"`
}

// Priority accepts Linear's numeric priority or a label string and keeps the label.
type Priority struct {
	Label string
}

// UnmarshalJSON decodes 0-4 numbers, numeric strings and free-form labels.
func (p *Priority) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		p.Label = PriorityLabelFor(int(n))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		p.Label = PriorityLabelFor(v)
		return nil
	}
	p.Label = s
	return nil
}

// PriorityLabelFor maps Linear's numeric priority to its label.
func PriorityLabelFor(priority int) string {
	switch priority {
	case 1:
		return "Urgent"
	case 2:
		return "High"
	case 3:
		return "Medium"
	case 4:
		return "Low"
	default:
		return "No priority"
	}
}

// CompletionEvent is a validated "issue moved to Done" delivery.
type CompletionEvent struct {
	TaskID       string
	Title        string
	AssigneeName string
	Estimate     *float64
	Priority     string
}
