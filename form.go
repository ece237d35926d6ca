// form.go - Contact form state, validation rules, and submission lifecycle
package main

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EnquiryType is the reason-for-contact selection on the form
type EnquiryType string

const (
	EnquiryHireMe     EnquiryType = "hireMe"
	EnquiryOpenSource EnquiryType = "openSource"
	EnquiryOther      EnquiryType = "other"
)

// EnquiryOption pairs a wire value with the label shown in the dropdown
type EnquiryOption struct {
	Value EnquiryType
	Label string
}

// EnquiryOptions lists the selectable enquiry types in display order
var EnquiryOptions = []EnquiryOption{
	{EnquiryHireMe, "Freelance project proposal"},
	{EnquiryOpenSource, "Open source consultancy session"},
	{EnquiryOther, "Other"},
}

// FormFields holds everything a visitor types into the contact form.
// The validate tags carry the field rules; form/json tags carry the wire names.
type FormFields struct {
	FirstName string      `form:"firstName" json:"firstName" validate:"required"`
	Email     string      `form:"email" json:"email" validate:"required,email"`
	Type      EnquiryType `form:"type" json:"type" validate:"required,oneof=hireMe openSource other"`
	Comment   string      `form:"comment" json:"comment" validate:"required,min=25"`
}

// DefaultFields returns the form's initial values: empty text fields and the
// first enquiry option preselected
func DefaultFields() FormFields {
	return FormFields{Type: EnquiryHireMe}
}

// Form field names as they appear on the wire
const (
	FieldFirstName = "firstName"
	FieldEmail     = "email"
	FieldType      = "type"
	FieldComment   = "comment"
)

var formFieldNames = []string{FieldFirstName, FieldEmail, FieldType, FieldComment}

func knownField(name string) bool {
	for _, n := range formFieldNames {
		if n == name {
			return true
		}
	}
	return false
}

// Messages shown beneath a failing control
const (
	msgRequired      = "Required"
	msgInvalidEmail  = "Invalid email address"
	msgCommentLength = "Must be at least 25 characters"
)

// FieldErrors maps a field name to its failing message
type FieldErrors map[string]string

var fieldValidator = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the wire name so templates and fragments can key on it
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field against its rules and returns the failing
// messages keyed by field name. An empty map means the payload is clean.
func Validate(fields FormFields) FieldErrors {
	errs := FieldErrors{}
	err := fieldValidator.Struct(fields)
	if err == nil {
		return errs
	}
	for _, fe := range err.(validator.ValidationErrors) {
		errs[fe.Field()] = messageFor(fe)
	}
	return errs
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return msgInvalidEmail
	case "min":
		return msgCommentLength
	default:
		// required and oneof both mean a value must be provided or selected
		return msgRequired
	}
}

// ResponseKind classifies a settled submission
type ResponseKind string

const (
	ResponseSuccess ResponseKind = "success"
	ResponseError   ResponseKind = "error"
)

// Response is the Submitter's report for one settled submission
type Response struct {
	Kind    ResponseKind
	Message string
}

// Submitter performs the actual delivery of a submission. It owns the
// in-flight and settled state; the form only reads it.
type Submitter interface {
	Loading() bool
	Response() *Response
	Submit(endpoint string, payload FormFields)
}

// Alerter surfaces a one-shot success or error notification to the visitor
type Alerter interface {
	Open(kind ResponseKind, message string)
}

// Phase is where a submission currently stands
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ContactForm owns the field values, which fields the visitor has touched,
// and the field errors currently on display. Delivery and notification are
// delegated to the injected Submitter and Alerter.
type ContactForm struct {
	fields    FormFields
	errors    FieldErrors
	touched   map[string]bool
	submitter Submitter
	alert     Alerter

	// Last response already acted on, so reset/alert run once per settled
	// submission instead of once per render
	lastSeen *Response
}

func NewContactForm(submitter Submitter, alert Alerter) *ContactForm {
	return &ContactForm{
		fields:    DefaultFields(),
		errors:    FieldErrors{},
		touched:   make(map[string]bool),
		submitter: submitter,
		alert:     alert,
	}
}

// Fields returns a copy of the current field values
func (f *ContactForm) Fields() FormFields {
	return f.fields
}

// Set updates one field from user input. A field the visitor has already
// touched is re-checked immediately so a corrected value clears its error.
func (f *ContactForm) Set(name, value string) {
	switch name {
	case FieldFirstName:
		f.fields.FirstName = value
	case FieldEmail:
		f.fields.Email = value
	case FieldType:
		f.fields.Type = EnquiryType(value)
	case FieldComment:
		f.fields.Comment = value
	default:
		return
	}
	if f.touched[name] {
		f.revalidate(name)
	}
}

// Blur marks a field as touched and validates it. Untouched fields never
// display an error, so this is the earliest one can appear.
func (f *ContactForm) Blur(name string) {
	if !knownField(name) {
		return
	}
	f.touched[name] = true
	f.revalidate(name)
}

func (f *ContactForm) revalidate(name string) {
	if msg, ok := Validate(f.fields)[name]; ok {
		f.errors[name] = msg
	} else {
		delete(f.errors, name)
	}
}

// FieldError returns the message to display beneath a control, or "" when the
// field is valid or not yet touched
func (f *ContactForm) FieldError(name string) string {
	if !f.touched[name] {
		return ""
	}
	return f.errors[name]
}

// VisibleErrors returns the messages currently on display, keyed by field name
func (f *ContactForm) VisibleErrors() FieldErrors {
	visible := FieldErrors{}
	for name, msg := range f.errors {
		if f.touched[name] {
			visible[name] = msg
		}
	}
	return visible
}

// Submit validates every field and, when the payload is clean, forwards it to
// the submitter exactly once. Returns whether the submission was forwarded.
// A submit while one is already pending is dropped.
func (f *ContactForm) Submit() bool {
	if f.submitter.Loading() {
		return false
	}
	for _, name := range formFieldNames {
		f.touched[name] = true
	}
	f.errors = Validate(f.fields)
	if len(f.errors) > 0 {
		return false
	}
	f.submitter.Submit(contactEndpoint(), f.fields)
	return true
}

// Sync applies the side effects of a settled submission: reset the fields
// after a success, keep them after an error, and raise the alert. It compares
// the submitter's response reference against the last one acted on, so calling
// it repeatedly is harmless.
func (f *ContactForm) Sync() {
	resp := f.submitter.Response()
	if resp == f.lastSeen {
		return
	}
	f.lastSeen = resp
	if resp == nil {
		// Response cleared; the form is back to idle
		return
	}
	if resp.Kind == ResponseSuccess {
		f.fields = DefaultFields()
		f.errors = FieldErrors{}
		f.touched = make(map[string]bool)
	}
	if f.alert != nil {
		f.alert.Open(resp.Kind, resp.Message)
	}
}

// Loading reports whether a submission is in flight
func (f *ContactForm) Loading() bool {
	return f.submitter.Loading()
}

// Phase derives where the form's submission currently stands
func (f *ContactForm) Phase() Phase {
	if f.submitter.Loading() {
		return PhaseSubmitting
	}
	if resp := f.submitter.Response(); resp != nil {
		if resp.Kind == ResponseSuccess {
			return PhaseSucceeded
		}
		return PhaseFailed
	}
	return PhaseIdle
}
