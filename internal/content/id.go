package content

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Canonical ID prefixes. The full grammar:
//
//	pubmed-<PMID>                    bibliographic article
//	bookshelf-<BookID>               whole textbook
//	bookshelf-<BookID>-<ChapterID>   specific chapter
//	user-doc-<UUID>                  uploaded document
//
// Book ids must not themselves contain a dash; a dash in the tail is always
// read as a chapter separator. Documented limitation of the grammar.
const (
	pubmedPrefix    = "pubmed-"
	bookshelfPrefix = "bookshelf-"
	userDocPrefix   = "user-doc-"
)

// PubMedID derives the canonical id for a PubMed article.
func PubMedID(pmid string) string { return pubmedPrefix + pmid }

// BookshelfID derives the canonical id for a whole book.
func BookshelfID(bookID string) string { return bookshelfPrefix + bookID }

// BookshelfChapterID derives the canonical id for a single chapter.
func BookshelfChapterID(bookID, chapterID string) string {
	return bookshelfPrefix + bookID + "-" + chapterID
}

// NewUserDocID mints an id for an uploaded document. The user-doc- prefix is
// part of the public contract; the random suffix replaces the original
// second-granularity timestamp, which collided under rapid uploads.
func NewUserDocID() string { return userDocPrefix + uuid.NewString() }

// ResourceRef is a parsed canonical id: the originating source plus the
// identifiers needed to route a detail fetch.
type ResourceRef struct {
	Source    SourceType
	SourceID  string
	ChapterID string
}

// ParseID parses a canonical id against the grammar above. An id matching no
// known prefix fails with ErrMalformedID.
func ParseID(id string) (ResourceRef, error) {
	switch {
	case strings.HasPrefix(id, userDocPrefix):
		rest := id[len(userDocPrefix):]
		if rest == "" {
			return ResourceRef{}, fmt.Errorf("%w: %q", ErrMalformedID, id)
		}
		return ResourceRef{Source: SourceUserProvided, SourceID: id}, nil

	case strings.HasPrefix(id, pubmedPrefix):
		pmid := id[len(pubmedPrefix):]
		if pmid == "" {
			return ResourceRef{}, fmt.Errorf("%w: %q", ErrMalformedID, id)
		}
		return ResourceRef{Source: SourcePubMed, SourceID: pmid}, nil

	case strings.HasPrefix(id, bookshelfPrefix):
		rest := id[len(bookshelfPrefix):]
		if rest == "" {
			return ResourceRef{}, fmt.Errorf("%w: %q", ErrMalformedID, id)
		}
		if book, chapter, ok := strings.Cut(rest, "-"); ok {
			if book == "" || chapter == "" {
				return ResourceRef{}, fmt.Errorf("%w: %q", ErrMalformedID, id)
			}
			return ResourceRef{Source: SourceBookshelf, SourceID: book, ChapterID: chapter}, nil
		}
		return ResourceRef{Source: SourceBookshelf, SourceID: rest}, nil
	}
	return ResourceRef{}, fmt.Errorf("%w: %q", ErrMalformedID, id)
}

// CanonicalID re-derives the canonical id from a parsed reference. For any
// valid ref this is the inverse of ParseID.
func (r ResourceRef) CanonicalID() string {
	switch r.Source {
	case SourcePubMed:
		return PubMedID(r.SourceID)
	case SourceBookshelf:
		if r.ChapterID != "" {
			return BookshelfChapterID(r.SourceID, r.ChapterID)
		}
		return BookshelfID(r.SourceID)
	case SourceUserProvided:
		return r.SourceID
	}
	return ""
}
