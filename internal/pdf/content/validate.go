package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validator checks downloaded or local documents before they are parsed
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator rejecting documents above maxFileSize bytes
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// Validate reads data with pdfcpu in relaxed mode and returns the page count.
// Documents pdfcpu cannot read at all are rejected; relaxed validation
// findings on otherwise readable files are tolerated.
func (v *Validator) Validate(data []byte) (pageCount int, err error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("document is empty")
	}
	if v.maxFileSize > 0 && int64(len(data)) > v.maxFileSize {
		return 0, fmt.Errorf("document too large: %d bytes (max: %d bytes)", len(data), v.maxFileSize)
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data[:min(len(data), 1024)], "\x00\t\n\r "), []byte("%PDF")) {
		return 0, fmt.Errorf("missing %%PDF header")
	}

	defer func() {
		if r := recover(); r != nil {
			pageCount = 0
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to ensure page count: %w", err)
	}

	if err := api.ValidateContext(ctx); err != nil {
		return ctx.PageCount, fmt.Errorf("%w: %v", ErrRelaxedValidation, err)
	}

	return ctx.PageCount, nil
}

// ErrRelaxedValidation marks documents pdfcpu could read but not fully
// validate. Callers may log it and continue.
var ErrRelaxedValidation = errors.New("relaxed validation failed")

// ReadFile loads a local PDF after the same checks the scraper applies to
// downloads
func (v *Validator) ReadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, fmt.Errorf("file is not a PDF: %s", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}
	if v.maxFileSize > 0 && info.Size() > v.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), v.maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
