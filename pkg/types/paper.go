// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the ai-research pipeline:
// the relational records parsed from academic graph responses, geocoded
// affiliation locations, and per-stage configuration.
package types

// Paper is an academic graph paper. Optional attributes the API may omit are
// pointers so an absent value is stored as NULL rather than a zero value.
type Paper struct {
	ID              int64    `json:"id" yaml:"id"`
	Prob            *float64 `json:"prob,omitempty" yaml:"prob,omitempty"`
	Title           *string  `json:"title,omitempty" yaml:"title,omitempty"`
	PublicationType *string  `json:"publication_type,omitempty" yaml:"publication_type,omitempty"`
	Year            *int     `json:"year,omitempty" yaml:"year,omitempty"`
	Date            *string  `json:"date,omitempty" yaml:"date,omitempty"`
	Citations       *int     `json:"citations,omitempty" yaml:"citations,omitempty"`

	// References holds the ids of referenced papers in response order.
	References []int64 `json:"references,omitempty" yaml:"references,omitempty"`

	DOI           *string `json:"doi,omitempty" yaml:"doi,omitempty"`
	Publisher     *string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	BibtexDocType *string `json:"bibtex_doc_type,omitempty" yaml:"bibtex_doc_type,omitempty"`

	// Abstract is rebuilt from the inverted abstract index.
	Abstract *string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}

// Journal links a paper to the journal it was published in.
type Journal struct {
	PaperID int64  `json:"paper_id" yaml:"paper_id"`
	ID      int64  `json:"id" yaml:"id"`
	Name    string `json:"journal_name" yaml:"journal_name"`
}

// Conference links a paper to the conference it was published in.
type Conference struct {
	PaperID int64  `json:"paper_id" yaml:"paper_id"`
	ID      int64  `json:"id" yaml:"id"`
	Name    string `json:"conference_name" yaml:"conference_name"`
}

// Author is a paper author.
type Author struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// PaperAuthor links a paper to an author with the author's position.
type PaperAuthor struct {
	PaperID  int64 `json:"paper_id" yaml:"paper_id"`
	AuthorID int64 `json:"author_id" yaml:"author_id"`
	Order    *int  `json:"order,omitempty" yaml:"order,omitempty"`
}

// Affiliation is an institution an author was affiliated with.
type Affiliation struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"affiliation" yaml:"affiliation"`
}

// AuthorAffiliation records the affiliation of an author on a given paper.
type AuthorAffiliation struct {
	PaperID       int64 `json:"paper_id" yaml:"paper_id"`
	AuthorID      int64 `json:"author_id" yaml:"author_id"`
	AffiliationID int64 `json:"affiliation_id" yaml:"affiliation_id"`
}

// FieldOfStudy is a topic node attached to papers.
type FieldOfStudy struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// PaperFieldOfStudy links a paper to one of its fields of study.
type PaperFieldOfStudy struct {
	PaperID        int64 `json:"paper_id" yaml:"paper_id"`
	FieldOfStudyID int64 `json:"field_of_study_id" yaml:"field_of_study_id"`
}

// FosMetadata is the hierarchy position of a field of study. Level runs from
// 0 (broad discipline) to 5 (niche domain).
type FosMetadata struct {
	ID        int64   `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Level     int     `json:"level" yaml:"level"`
	ParentIDs []int64 `json:"parent_ids,omitempty" yaml:"parent_ids,omitempty"`
	ChildIDs  []int64 `json:"child_ids,omitempty" yaml:"child_ids,omitempty"`
}

// Batch is the relational form of a set of paper entities, ready to persist.
// Every slice is free of duplicate keys and keeps first-seen order.
type Batch struct {
	Papers             []Paper             `json:"papers" yaml:"papers"`
	Journals           []Journal           `json:"journals" yaml:"journals"`
	Conferences        []Conference        `json:"conferences" yaml:"conferences"`
	Authors            []Author            `json:"authors" yaml:"authors"`
	PaperAuthors       []PaperAuthor       `json:"paper_authors" yaml:"paper_authors"`
	Affiliations       []Affiliation       `json:"affiliations" yaml:"affiliations"`
	AuthorAffiliations []AuthorAffiliation `json:"author_affiliations" yaml:"author_affiliations"`
	FieldsOfStudy      []FieldOfStudy      `json:"fields_of_study" yaml:"fields_of_study"`
	PaperFieldsOfStudy []PaperFieldOfStudy `json:"paper_fields_of_study" yaml:"paper_fields_of_study"`
}
