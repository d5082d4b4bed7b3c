package models

import "time"

// AddinIntentKind classifies add-in input as a question or a reply request.
type AddinIntentKind string

const (
	AddinIntentQA    AddinIntentKind = "qa"
	AddinIntentReply AddinIntentKind = "reply"
)

// OutlookMessage is the context of the email the add-in is open on.
type OutlookMessage struct {
	From        string    `json:"from,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	ReceivedAt  time.Time `json:"received_at,omitempty"`
	BodyPreview string    `json:"body_preview,omitempty"`
}

// AddinIntent is the classification of add-in user input.
// Created per request, consumed once, discarded.
type AddinIntent struct {
	Intent     AddinIntentKind `json:"intent"`
	Confidence float64         `json:"confidence"`
	Triggers   []string        `json:"triggers"`
	Context    *OutlookMessage `json:"context,omitempty"`
}

// AnswerConfidence is the confidence band attached to user-facing answers.
type AnswerConfidence string

const (
	ConfidenceHigh   AnswerConfidence = "high"
	ConfidenceMedium AnswerConfidence = "medium"
	ConfidenceLow    AnswerConfidence = "low"
)

// Fact is a single sourced data point used in an answer or reply.
type Fact struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Source string `json:"source"`
	Page   int    `json:"page,omitempty"`
}

// QAResult is the fixed-shape outcome of the add-in Q&A adapter.
// Every terminal state of the adapter produces one of these.
type QAResult struct {
	Answer         string           `json:"answer"`
	Confidence     AnswerConfidence `json:"confidence"`
	Sources        []string         `json:"sources"`
	Facts          []Fact           `json:"facts"`
	RequiresReview bool             `json:"requires_review"`
	Suggestions    []string         `json:"suggestions"`
}

// ReplyMetadata summarizes how a reply was produced.
type ReplyMetadata struct {
	GeneratedAt time.Time        `json:"generated_at"`
	FactCount   int              `json:"fact_count"`
	SourceCount int              `json:"source_count"`
	Confidence  AnswerConfidence `json:"confidence"`
}

// ReplyResult is the outcome of the add-in reply adapter.
type ReplyResult struct {
	SubjectSuggestion string        `json:"subject_suggestion"`
	BodyHTML          string        `json:"body_html"`
	UsedFacts         []string      `json:"used_facts"`
	Sources           []string      `json:"sources"`
	Metadata          ReplyMetadata `json:"metadata"`
}
