package main

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() url.Values {
	return url.Values{
		"firstName": {"John Doe"},
		"email":     {"john.doe@example.com"},
		"type":      {"hireMe"},
		"comment":   {"I have a project in mind and would like to discuss it with you."},
	}
}

func submissionCount(t *testing.T) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM submissions").Scan(&n); err != nil {
		t.Errorf("count submissions: %v", err)
	}
	return n
}

func TestContactFormFragment(t *testing.T) {
	r := newRouter(&scriptedSender{})

	w := performForm(t, r, http.MethodGet, "/contact-form", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `name="firstName"`)
	assert.Contains(t, body, `name="email"`)
	assert.Contains(t, body, `name="type"`)
	assert.Contains(t, body, `name="comment"`)
	assert.Contains(t, body, "Freelance project proposal")
	assert.Contains(t, body, `value="hireMe" selected`)
	assert.NotContains(t, body, ">Required<", "a fresh form shows no errors")
}

func TestSubmitEmptyFormShowsAllErrors(t *testing.T) {
	before := submissionCount(t)
	sender := &scriptedSender{}
	r := newRouter(sender)

	w := performForm(t, r, http.MethodPost, "/contact", url.Values{
		"firstName": {""},
		"email":     {""},
		"comment":   {""},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 3, strings.Count(body, ">Required<"), "every empty text field reports at once")
	assert.Zero(t, sender.sent(), "invalid input never reaches the transport")
	assert.Equal(t, before, submissionCount(t), "invalid input is not recorded")
}

func TestSubmitInvalidEmailShowsMessage(t *testing.T) {
	sender := &scriptedSender{}
	r := newRouter(sender)
	form := validForm()
	form.Set("email", "invalidemail")

	w := performForm(t, r, http.MethodPost, "/contact", form)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Invalid email address")
	assert.Contains(t, body, `value="John Doe"`, "typed values survive a failed validation")
	assert.Zero(t, sender.sent())
}

func TestSubmitShortCommentShowsMessage(t *testing.T) {
	sender := &scriptedSender{}
	r := newRouter(sender)
	form := validForm()
	form.Set("comment", "too short")

	w := performForm(t, r, http.MethodPost, "/contact", form)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Must be at least 25 characters")
	assert.Zero(t, sender.sent())
}

func TestSubmitValidDeliversOnce(t *testing.T) {
	before := submissionCount(t)
	sender := &scriptedSender{}
	r := newRouter(sender)

	w := performForm(t, r, http.MethodPost, "/contact", validForm())

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, sender.sent())

	endpoint, payload := sender.last()
	assert.Equal(t, defaultContactEndpoint, endpoint)
	assert.Equal(t, FormFields{
		FirstName: "John Doe",
		Email:     "john.doe@example.com",
		Type:      EnquiryHireMe,
		Comment:   "I have a project in mind and would like to discuss it with you.",
	}, payload)

	body := w.Body.String()
	assert.Contains(t, body, "Thank you for your message!")
	assert.Contains(t, body, "Send another message")
	assert.NotContains(t, body, "<form", "the form is replaced by the success fragment")

	// The submission log is written in the background
	require.Eventually(t, func() bool {
		return submissionCount(t) == before+1
	}, time.Second, 10*time.Millisecond)

	var delivered bool
	require.NoError(t, db.QueryRow("SELECT delivered FROM submissions ORDER BY id DESC LIMIT 1").Scan(&delivered))
	assert.True(t, delivered)
}

func TestSubmitDeliveryFailureKeepsInput(t *testing.T) {
	before := submissionCount(t)
	sender := &scriptedSender{err: errors.New("endpoint down")}
	r := newRouter(sender)

	w := performForm(t, r, http.MethodPost, "/contact", validForm())

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, submitErrorMessage)
	assert.Contains(t, body, "alert-error")
	assert.Contains(t, body, `value="John Doe"`, "a failed delivery must not wipe the form")
	assert.Contains(t, body, `value="john.doe@example.com"`)
	assert.Contains(t, body, "I have a project in mind")

	require.Eventually(t, func() bool {
		return submissionCount(t) == before+1
	}, time.Second, 10*time.Millisecond)

	var delivered bool
	require.NoError(t, db.QueryRow("SELECT delivered FROM submissions ORDER BY id DESC LIMIT 1").Scan(&delivered))
	assert.False(t, delivered, "undelivered submissions are kept for follow-up")
}

func TestValidateFragmentReportsFieldError(t *testing.T) {
	r := newRouter(&scriptedSender{})

	w := performForm(t, r, http.MethodPost, "/contact/validate", url.Values{
		"field": {"email"},
		"email": {"invalidemail"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="email-error"`)
	assert.Contains(t, w.Body.String(), "Invalid email address")
}

func TestValidateFragmentRequiredOnBlur(t *testing.T) {
	r := newRouter(&scriptedSender{})

	w := performForm(t, r, http.MethodPost, "/contact/validate", url.Values{
		"field":     {"firstName"},
		"firstName": {""},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ">Required<")
}

func TestValidateFragmentClearsWhenValid(t *testing.T) {
	r := newRouter(&scriptedSender{})

	w := performForm(t, r, http.MethodPost, "/contact/validate", url.Values{
		"field": {"email"},
		"email": {"test@example.com"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="email-error"`)
	assert.NotContains(t, w.Body.String(), "Invalid email address")
	assert.NotContains(t, w.Body.String(), ">Required<")
}

func TestValidateFragmentRejectsUnknownField(t *testing.T) {
	r := newRouter(&scriptedSender{})

	w := performForm(t, r, http.MethodPost, "/contact/validate", url.Values{
		"field": {"password"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitControlLoadingIndicator(t *testing.T) {
	tmpl, err := template.ParseGlob("templates/*")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "contact.html", formViewData(DefaultFields(), FieldErrors{}, true)))
	assert.Contains(t, buf.String(), "data-loading")
	assert.Contains(t, buf.String(), "Sending...")

	buf.Reset()
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "contact.html", formViewData(DefaultFields(), FieldErrors{}, false)))
	assert.NotContains(t, buf.String(), "data-loading")
	assert.Contains(t, buf.String(), "Send Message")
}
