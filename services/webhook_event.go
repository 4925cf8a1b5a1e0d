package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"linear-gamification/models"
)

var (
	// ErrInvalidPayload means the delivery body is not JSON at all.
	ErrInvalidPayload = errors.New("invalid JSON payload")
	// ErrMissingTaskID means a Done issue arrived without an id.
	ErrMissingTaskID = errors.New("no task ID found")
)

// DoneStateName is the workflow state that counts as a completion.
const DoneStateName = "Done"

// ParseCompletionEvent recognizes an "issue moved to Done" delivery.
// It returns (nil, nil) for well-formed deliveries that are not completions.
func ParseCompletionEvent(body []byte) (*models.CompletionEvent, error) {
	var envelope models.LinearWebhook
	if err := json.Unmarshal(body, &envelope); err != nil {
		var anyJSON any
		if json.Unmarshal(body, &anyJSON) != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		// Valid JSON with an unexpected shape (array, wrong field types).
		return nil, nil
	}
	if envelope.Type != "Issue" || envelope.Action != "update" {
		return nil, nil
	}

	var issue models.LinearIssue
	if err := json.Unmarshal(envelope.Data, &issue); err != nil {
		log.Printf("⚠️  [WEBHOOK] Ignoring issue update with unexpected data shape: %v", err)
		return nil, nil
	}
	if issue.State == nil || issue.State.Name != DoneStateName {
		return nil, nil
	}
	if issue.ID == "" {
		log.Printf("⚠️  [WEBHOOK] Done issue %q arrived without a usable id", issue.Title)
		return nil, ErrMissingTaskID
	}

	ev := &models.CompletionEvent{
		TaskID:   string(issue.ID),
		Title:    issue.Title,
		Estimate: issue.Estimate,
		Priority: issue.PriorityLabel,
	}
	if issue.Assignee != nil {
		ev.AssigneeName = issue.Assignee.Name
	}
	if issue.Priority != nil {
		ev.Priority = issue.Priority.Label
	}
	return ev, nil
}
