package model

import (
	"fmt"
	"strings"
)

func (d TaskDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if d.Priority != "" && !d.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, d.Priority)
	}
	if d.Size != "" && !d.Size.Valid() {
		return fmt.Errorf("%w: unknown size %q", ErrValidation, d.Size)
	}
	if d.Category != "" && !d.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, d.Category)
	}
	return nil
}

func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, *p.Priority)
	}
	if p.Size != nil && !p.Size.Valid() {
		return fmt.Errorf("%w: unknown size %q", ErrValidation, *p.Size)
	}
	if p.Category != nil && !p.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, *p.Category)
	}
	return nil
}
