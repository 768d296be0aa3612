// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mag

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Entity is one record of an Evaluate response. Only Id is guaranteed; every
// other attribute is present only when it was requested and known, so it is
// modelled as a pointer or an empty slice.
type Entity struct {
	ID      *int64   `json:"Id"`
	LogProb *float64 `json:"logprob,omitempty"`
	Prob    *float64 `json:"prob,omitempty"`

	// Paper attributes.
	Title           *string          `json:"Ti,omitempty"`
	PublicationType *string          `json:"Pt,omitempty"`
	Year            *int             `json:"Y,omitempty"`
	Date            *string          `json:"D,omitempty"`
	Citations       *int             `json:"CC,omitempty"`
	References      []int64          `json:"RId,omitempty"`
	DOI             *string          `json:"DOI,omitempty"`
	Publisher       *string          `json:"PB,omitempty"`
	BibtexDocType   *string          `json:"BT,omitempty"`
	Abstract        *InvertedIndex   `json:"IA,omitempty"`
	Authors         []AuthorEntry    `json:"AA,omitempty"`
	Fields          []FieldEntry     `json:"F,omitempty"`
	Journal         *JournalEntry    `json:"J,omitempty"`
	Conference      *ConferenceEntry `json:"C,omitempty"`

	// Field-of-study attributes.
	DisplayName *string     `json:"DFN,omitempty"`
	Level       *int        `json:"FL,omitempty"`
	Parents     []FieldLink `json:"FP,omitempty"`
	Children    []FieldLink `json:"FC,omitempty"`
}

// InvertedIndex is an abstract encoded as word -> positions.
type InvertedIndex struct {
	IndexLength   int              `json:"IndexLength"`
	InvertedIndex map[string][]int `json:"InvertedIndex"`
}

// AuthorEntry is one author of a paper together with the affiliation the
// author published under.
type AuthorEntry struct {
	AuthorID        *int64  `json:"AuId"`
	Name            *string `json:"DAuN,omitempty"`
	AffiliationID   *int64  `json:"AfId,omitempty"`
	AffiliationName *string `json:"DAfN,omitempty"`
	Order           *int    `json:"S,omitempty"`
}

// FieldEntry is a field of study attached to a paper.
type FieldEntry struct {
	ID             *int64  `json:"FId"`
	DisplayName    *string `json:"DFN,omitempty"`
	NormalizedName *string `json:"FN,omitempty"`
}

// JournalEntry is the journal a paper appeared in.
type JournalEntry struct {
	ID   *int64  `json:"JId"`
	Name *string `json:"JN,omitempty"`
}

// ConferenceEntry is the conference series a paper appeared in.
type ConferenceEntry struct {
	ID   *int64  `json:"CId"`
	Name *string `json:"CN,omitempty"`
}

// FieldLink references a parent or child field of study.
type FieldLink struct {
	ID *int64 `json:"FId"`
}

// Page is the decoded body of one Evaluate response.
type Page struct {
	Expr     string   `json:"expr"`
	Offset   int      `json:"offset"`
	Entities []Entity `json:"entities"`
}

// RequestError is returned when the API answers with a non-2xx status.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("mag: evaluate returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is transient (429 or 5xx).
func (e *RequestError) Retryable() bool {
	return e.StatusCode == 429 || (e.StatusCode >= 500 && e.StatusCode <= 599)
}

// MalformedResponseError is returned when a response body does not have the
// expected shape.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mag: malformed response: %s: %v", e.Reason, e.Err)
	}
	return "mag: malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// DecodePage parses an Evaluate response body. A body that is not JSON, has
// no entities key, or holds an entity without an Id is rejected.
func DecodePage(body []byte) ([]Entity, error) {
	var raw struct {
		Entities *[]Entity `json:"entities"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedResponseError{Reason: "decoding body", Err: err}
	}
	if raw.Entities == nil {
		return nil, &MalformedResponseError{Reason: "missing entities"}
	}
	for i, e := range *raw.Entities {
		if e.ID == nil {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("entity %d has no Id", i)}
		}
	}
	return *raw.Entities, nil
}

// IsMalformed reports whether err is or wraps a MalformedResponseError.
func IsMalformed(err error) bool {
	var m *MalformedResponseError
	return errors.As(err, &m)
}
