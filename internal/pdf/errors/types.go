package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Sentinel errors returned by the table engine and the field mapper
var (
	ErrHeaderNotFound           = stderrors.New("mandatory header not found")
	ErrNoRows                   = stderrors.New("no rows found on page")
	ErrInvalidApplicationNumber = stderrors.New("invalid application number")
	ErrEmptyAddress             = stderrors.New("address is empty after formatting")
)

// ScrapeError describes a failure together with the document and page it
// occurred on
type ScrapeError struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Document  string    `json:"document,omitempty"`
	Page      int       `json:"page,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Err       error     `json:"-"`
}

// Kind categorises scrape errors by the scope they abort
type Kind int

const (
	KindUnknown Kind = iota
	KindStructuralAbsence
	KindRowValidation
	KindUnparseableDate
	KindDocumentFetch
	KindDocumentOpen
	KindStorageWrite
)

// Scope is the unit of work a failure aborts
type Scope int

const (
	ScopeField Scope = iota
	ScopeRow
	ScopeRecord
	ScopePage
	ScopeDocument
	ScopeRun
)

// Error implements the error interface
func (e *ScrapeError) Error() string {
	location := ""
	switch {
	case e.Document != "" && e.Page > 0:
		location = fmt.Sprintf(" (%s page %d)", e.Document, e.Page)
	case e.Document != "":
		location = fmt.Sprintf(" (%s)", e.Document)
	}

	if e.Err != nil {
		return fmt.Sprintf("[%s] %s%s: %v", e.Kind, e.Message, location, e.Err)
	}
	return fmt.Sprintf("[%s] %s%s", e.Kind, e.Message, location)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindStructuralAbsence:
		return "STRUCTURAL_ABSENCE"
	case KindRowValidation:
		return "ROW_VALIDATION"
	case KindUnparseableDate:
		return "UNPARSEABLE_DATE"
	case KindDocumentFetch:
		return "DOCUMENT_FETCH"
	case KindDocumentOpen:
		return "DOCUMENT_OPEN"
	case KindStorageWrite:
		return "STORAGE_WRITE"
	default:
		return "UNKNOWN"
	}
}

// Scope returns the unit of work an error of this kind aborts
func (k Kind) Scope() Scope {
	switch k {
	case KindUnparseableDate:
		return ScopeField
	case KindRowValidation:
		return ScopeRow
	case KindStorageWrite:
		return ScopeRecord
	case KindStructuralAbsence:
		return ScopePage
	case KindDocumentFetch, KindDocumentOpen:
		return ScopeDocument
	default:
		return ScopeRun
	}
}

// Recoverable reports whether processing continues after an error of this
// kind. Only unknown errors abort the run.
func (k Kind) Recoverable() bool {
	return k.Scope() != ScopeRun
}

// NewScrapeError creates a new ScrapeError
func NewScrapeError(kind Kind, message string) *ScrapeError {
	return &ScrapeError{
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps err as a ScrapeError of the given kind
func Wrap(kind Kind, message string, err error) *ScrapeError {
	e := NewScrapeError(kind, message)
	e.Err = err
	return e
}

// WithDocument adds the document URL or path
func (e *ScrapeError) WithDocument(document string) *ScrapeError {
	e.Document = document
	return e
}

// WithPage adds the page number
func (e *ScrapeError) WithPage(page int) *ScrapeError {
	e.Page = page
	return e
}

// KindOf returns the Kind of the first ScrapeError in err's chain, or
// KindUnknown
func KindOf(err error) Kind {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// ErrorCollection accumulates the recoverable errors of a run
type ErrorCollection struct {
	Errors []*ScrapeError `json:"errors"`
}

// NewErrorCollection creates an empty collection
func NewErrorCollection() *ErrorCollection {
	return &ErrorCollection{Errors: make([]*ScrapeError, 0)}
}

// Add records err. Plain errors are stored as KindUnknown.
func (ec *ErrorCollection) Add(err error) {
	if err == nil {
		return
	}
	var se *ScrapeError
	if !stderrors.As(err, &se) {
		se = Wrap(KindUnknown, "unclassified error", err)
	}
	ec.Errors = append(ec.Errors, se)
}

// CountByKind returns the number of collected errors per kind
func (ec *ErrorCollection) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, err := range ec.Errors {
		counts[err.Kind]++
	}
	return counts
}

// Len returns the number of collected errors
func (ec *ErrorCollection) Len() int {
	return len(ec.Errors)
}

// Summary returns a text summary of all collected errors
func (ec *ErrorCollection) Summary() string {
	if len(ec.Errors) == 0 {
		return "No errors"
	}

	counts := ec.CountByKind()
	summary := fmt.Sprintf("Found %d error(s)", len(ec.Errors))
	for _, kind := range []Kind{
		KindDocumentFetch, KindDocumentOpen, KindStructuralAbsence,
		KindStorageWrite, KindUnknown,
	} {
		if n := counts[kind]; n > 0 {
			summary += fmt.Sprintf(", %s=%d", kind, n)
		}
	}
	return summary
}
