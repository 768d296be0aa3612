// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mag

import (
	"sort"
	"strings"

	"github.com/nestauk/ai-research/pkg/types"
)

// FosAttributes is the attribute list requested when looking up the
// hierarchy of fields of study.
var FosAttributes = []string{"Id", "DFN", "FL", "FP.FId", "FC.FId"}

// UniqueBy returns the elements of items with distinct keys. The first
// occurrence of each key is kept, in input order.
func UniqueBy[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := key(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// UniqueEntities drops entities whose Id was already seen, keeping the first.
// Entities without an Id are dropped.
func UniqueEntities(entities []Entity) []Entity {
	withID := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if e.ID != nil {
			withID = append(withID, e)
		}
	}
	return UniqueBy(withID, func(e Entity) int64 { return *e.ID })
}

// ParseEntities converts paper entities into relational records. Entities
// are deduplicated by Id first; every list in the result is then
// deduplicated by its key in first-seen order. Nested records without an id
// (an author without AuId, a journal without JId) are skipped.
func ParseEntities(entities []Entity) types.Batch {
	var b types.Batch

	for _, e := range UniqueEntities(entities) {
		paperID := *e.ID
		b.Papers = append(b.Papers, parsePaper(e))

		if e.Journal != nil && e.Journal.ID != nil {
			b.Journals = append(b.Journals, types.Journal{
				PaperID: paperID,
				ID:      *e.Journal.ID,
				Name:    deref(e.Journal.Name),
			})
		}
		if e.Conference != nil && e.Conference.ID != nil {
			b.Conferences = append(b.Conferences, types.Conference{
				PaperID: paperID,
				ID:      *e.Conference.ID,
				Name:    deref(e.Conference.Name),
			})
		}

		for _, a := range e.Authors {
			if a.AuthorID == nil {
				continue
			}
			b.Authors = append(b.Authors, types.Author{ID: *a.AuthorID, Name: deref(a.Name)})
			b.PaperAuthors = append(b.PaperAuthors, types.PaperAuthor{
				PaperID:  paperID,
				AuthorID: *a.AuthorID,
				Order:    a.Order,
			})
			if a.AffiliationID != nil {
				b.Affiliations = append(b.Affiliations, types.Affiliation{
					ID:   *a.AffiliationID,
					Name: deref(a.AffiliationName),
				})
				b.AuthorAffiliations = append(b.AuthorAffiliations, types.AuthorAffiliation{
					PaperID:       paperID,
					AuthorID:      *a.AuthorID,
					AffiliationID: *a.AffiliationID,
				})
			}
		}

		for _, f := range e.Fields {
			if f.ID == nil {
				continue
			}
			name := deref(f.DisplayName)
			if name == "" {
				name = deref(f.NormalizedName)
			}
			b.FieldsOfStudy = append(b.FieldsOfStudy, types.FieldOfStudy{ID: *f.ID, Name: name})
			b.PaperFieldsOfStudy = append(b.PaperFieldsOfStudy, types.PaperFieldOfStudy{
				PaperID:        paperID,
				FieldOfStudyID: *f.ID,
			})
		}
	}

	b.Journals = UniqueBy(b.Journals, func(j types.Journal) int64 { return j.PaperID })
	b.Conferences = UniqueBy(b.Conferences, func(c types.Conference) int64 { return c.PaperID })
	b.Authors = UniqueBy(b.Authors, func(a types.Author) int64 { return a.ID })
	b.PaperAuthors = UniqueBy(b.PaperAuthors, func(pa types.PaperAuthor) [2]int64 {
		return [2]int64{pa.PaperID, pa.AuthorID}
	})
	b.Affiliations = UniqueBy(b.Affiliations, func(a types.Affiliation) int64 { return a.ID })
	b.AuthorAffiliations = UniqueBy(b.AuthorAffiliations, func(aa types.AuthorAffiliation) types.AuthorAffiliation {
		return aa
	})
	b.FieldsOfStudy = UniqueBy(b.FieldsOfStudy, func(f types.FieldOfStudy) int64 { return f.ID })
	b.PaperFieldsOfStudy = UniqueBy(b.PaperFieldsOfStudy, func(pf types.PaperFieldOfStudy) types.PaperFieldOfStudy {
		return pf
	})

	return b
}

func parsePaper(e Entity) types.Paper {
	p := types.Paper{
		ID:              *e.ID,
		Prob:            e.Prob,
		Title:           e.Title,
		PublicationType: e.PublicationType,
		Year:            e.Year,
		Date:            e.Date,
		Citations:       e.Citations,
		References:      e.References,
		DOI:             e.DOI,
		Publisher:       e.Publisher,
		BibtexDocType:   e.BibtexDocType,
	}
	if e.Abstract != nil {
		if text := reconstructAbstract(e.Abstract.InvertedIndex); text != "" {
			p.Abstract = &text
		}
	}
	return p
}

// ParseFosMetadata converts field-of-study entities into hierarchy records,
// one per distinct Id. Entities without a level are skipped.
func ParseFosMetadata(entities []Entity) []types.FosMetadata {
	var out []types.FosMetadata
	for _, e := range UniqueEntities(entities) {
		if e.Level == nil {
			continue
		}
		out = append(out, types.FosMetadata{
			ID:        *e.ID,
			Name:      deref(e.DisplayName),
			Level:     *e.Level,
			ParentIDs: linkIDs(e.Parents),
			ChildIDs:  linkIDs(e.Children),
		})
	}
	return out
}

func linkIDs(links []FieldLink) []int64 {
	var ids []int64
	for _, l := range links {
		if l.ID != nil {
			ids = append(ids, *l.ID)
		}
	}
	return ids
}

// reconstructAbstract converts an inverted abstract index back to plain
// text. The index maps each word to the positions where it appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].pos != pairs[j].pos {
			return pairs[i].pos < pairs[j].pos
		}
		return pairs[i].word < pairs[j].word
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
