// contact.go - Contact form endpoints (HTMX fragments)
package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// fragmentAlert captures the one-shot notification raised for a settled
// submission so the handler can render it inside the returned fragment
type fragmentAlert struct {
	Fired   bool
	Kind    ResponseKind
	Message string
}

func (a *fragmentAlert) Open(kind ResponseKind, message string) {
	a.Fired = true
	a.Kind = kind
	a.Message = message
}

// formViewData builds the template payload for the contact form fragment
func formViewData(values FormFields, errs FieldErrors, loading bool) gin.H {
	return gin.H{
		"values":  values,
		"errors":  errs,
		"loading": loading,
		"options": EnquiryOptions,
	}
}

// bindFields reads the posted form values, falling back to the default
// enquiry selection when the browser sent none
func bindFields(c *gin.Context) (FormFields, error) {
	var in FormFields
	if err := c.ShouldBind(&in); err != nil {
		return FormFields{}, err
	}
	if in.Type == "" {
		in.Type = EnquiryHireMe
	}
	return in, nil
}

// Returns the contact form fragment with default values
func contactFormHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", formViewData(DefaultFields(), FieldErrors{}, false))
}

// Validates a single blurred field and returns its inline error fragment
func contactValidateHandler(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid form payload")
		return
	}
	name := c.PostForm("field")
	if !knownField(name) {
		c.String(http.StatusBadRequest, "unknown field")
		return
	}
	c.HTML(http.StatusOK, "field-error.html", gin.H{
		"field":   name,
		"message": Validate(fields)[name],
	})
}

// Handles the full submission: validate everything, deliver through the
// submitter, then render the success fragment or the form with its errors
func contactSubmitHandler(sender Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := bindFields(c)
		if err != nil {
			c.String(http.StatusBadRequest, "invalid form payload")
			return
		}

		sub := NewSubmitter(sender)
		alert := &fragmentAlert{}
		form := NewContactForm(sub, alert)
		form.Set(FieldFirstName, in.FirstName)
		form.Set(FieldEmail, in.Email)
		form.Set(FieldType, string(in.Type))
		form.Set(FieldComment, in.Comment)

		if !form.Submit() {
			// Invalid input never reaches the submitter; show every message at once
			c.HTML(http.StatusOK, "contact.html", formViewData(form.Fields(), form.VisibleErrors(), false))
			return
		}
		payload := form.Fields()

		if err := sub.Wait(c.Request.Context()); err != nil {
			log.Printf("Contact submission not settled: %v", err)
			alert.Open(ResponseError, submitErrorMessage)
		} else {
			form.Sync()
			go recordSubmission(payload, alert.Kind == ResponseSuccess)
		}

		if alert.Kind == ResponseSuccess {
			c.HTML(http.StatusOK, "contact-success.html", gin.H{
				"success": alert.Message,
			})
			return
		}

		// Delivery failed: keep what the visitor typed so they can retry
		view := formViewData(form.Fields(), form.VisibleErrors(), false)
		if alert.Fired {
			view["alert"] = alert
		}
		c.HTML(http.StatusOK, "contact.html", view)
	}
}
