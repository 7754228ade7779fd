// Package requests holds the request lifecycle rules shared by the HTTP
// handlers and the live dashboards: form validation, status transitions,
// view filtering and PC availability.
package requests

import (
	"errors"
	"sort"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// MaxImageBytes bounds report attachments.
const MaxImageBytes = 5 << 20

const (
	FieldDates     = "dates"
	FieldPurpose   = "purpose"
	FieldEquipment = "equipment"
	FieldFields    = "fields"
	FieldPC        = "pc"
	FieldAgreement = "agreement"
	FieldImage     = "image"
)

const (
	msgMissingDates   = "Please enter both borrowed and return dates."
	msgBadDate        = "Dates must use the YYYY-MM-DD format."
	msgBorrowAfter    = "Borrow date must be before the return date."
	msgBorrowPast     = "Borrow date cannot be in the past."
	msgMissingPurpose = "Please state the purpose of the request."
	msgMissingEquip   = "Please select the equipment."
	msgNoUnits        = "This equipment has no units left to borrow."
	msgMissingFields  = "Please complete all required fields."
	msgBadPC          = "PC number must be a positive number."
	msgAgreement      = "Please acknowledge and accept the Terms and Policies before proceeding."
	msgImageTooLarge  = "Image file size must be less than 5MB."
	msgImageType      = "Image must be a JPEG, PNG, GIF or WebP file."
)

var ErrValidation = errors.New("validation failed")

// ValidationError carries every problem found in a submission, keyed by field.
// A field may collect several messages.
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Has(field string) bool { return len(e.Fields[field]) > 0 }

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

type BorrowInput struct {
	Equipment     string `json:"equipment" form:"equipment"`
	CatalogItemID string `json:"catalogItemId" form:"catalogItemId"`
	BorrowDate    string `json:"borrowDate" form:"borrowDate"`
	ReturnDate    string `json:"returnDate" form:"returnDate"`
	Purpose       string `json:"purpose" form:"purpose"`
	AcceptTerms   bool   `json:"acceptTerms" form:"acceptTerms"`
}

type ReportInput struct {
	Equipment     string `json:"equipment" form:"equipment"`
	CatalogItemID string `json:"catalogItemId" form:"catalogItemId"`
	Room          string `json:"room" form:"room"`
	PC            int    `json:"pc" form:"pc"`
	Issue         string `json:"issue" form:"issue"`
	AcceptTerms   bool   `json:"acceptTerms" form:"acceptTerms"`
}

// ValidateBorrow checks a borrow form. today is compared at day granularity.
func ValidateBorrow(in BorrowInput, today time.Time) error {
	var verr ValidationError

	if strings.TrimSpace(in.Equipment) == "" {
		verr.add(FieldEquipment, msgMissingEquip)
	}
	borrowRaw, returnRaw := strings.TrimSpace(in.BorrowDate), strings.TrimSpace(in.ReturnDate)
	if borrowRaw == "" || returnRaw == "" {
		verr.add(FieldDates, msgMissingDates)
	} else {
		borrow, errB := time.Parse(DateLayout, borrowRaw)
		ret, errR := time.Parse(DateLayout, returnRaw)
		if errB != nil || errR != nil {
			verr.add(FieldDates, msgBadDate)
		} else {
			if borrow.After(ret) {
				verr.add(FieldDates, msgBorrowAfter)
			}
			if borrow.Before(startOfDay(today)) {
				verr.add(FieldDates, msgBorrowPast)
			}
		}
	}
	if strings.TrimSpace(in.Purpose) == "" {
		verr.add(FieldPurpose, msgMissingPurpose)
	}
	if !in.AcceptTerms {
		verr.add(FieldAgreement, msgAgreement)
	}
	return verr.orNil()
}

// ValidateReport checks a report form.
func ValidateReport(in ReportInput) error {
	var verr ValidationError

	if strings.TrimSpace(in.Equipment) == "" {
		verr.add(FieldEquipment, msgMissingEquip)
	}
	if strings.TrimSpace(in.Room) == "" || in.PC == 0 || strings.TrimSpace(in.Issue) == "" {
		verr.add(FieldFields, msgMissingFields)
	}
	if in.PC < 0 {
		verr.add(FieldPC, msgBadPC)
	}
	if !in.AcceptTerms {
		verr.add(FieldAgreement, msgAgreement)
	}
	return verr.orNil()
}

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImage checks an attachment's size and sniffed content type.
func ValidateImage(size int64, contentType string) error {
	var verr ValidationError
	if size > MaxImageBytes {
		verr.add(FieldImage, msgImageTooLarge)
	}
	if !imageTypes[contentType] {
		verr.add(FieldImage, msgImageType)
	}
	return verr.orNil()
}

// ParseDay parses a YYYY-MM-DD date in the location of ref.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CheckStock rejects borrowing a catalog item with no units left.
func CheckStock(available int) error {
	var verr ValidationError
	if available <= 0 {
		verr.add(FieldEquipment, msgNoUnits)
	}
	return verr.orNil()
}
