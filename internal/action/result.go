package action

import (
	"net/url"

	"github.com/smallbiznis/dashboard/internal/validation"
)

const (
	TargetCustomers = "/dashboard/customers"
	TargetInvoices  = "/dashboard/invoices"
	TargetDashboard = "/dashboard"
)

// State is what a form re-renders with after a failed submission.
type State struct {
	Message string                 `json:"message"`
	Errors  validation.FieldErrors `json:"errors,omitempty"`
}

// Result is either a Redirect or a Failure. Callers must stop processing the
// submission once they receive a Redirect.
type Result interface {
	isResult()
}

type Redirect struct {
	Target string
}

type Failure struct {
	State State
}

func (Redirect) isResult() {}
func (Failure) isResult()  {}

func fail(message string, errs validation.FieldErrors) Failure {
	return Failure{State: State{Message: message, Errors: errs}}
}

type FileInput struct {
	Filename string
	Data     []byte
}

// Form is a raw submission: text fields plus attached files, and the client
// that sent it.
type Form struct {
	Values    url.Values
	Files     map[string]*FileInput
	UserAgent string
	IPAddress string
}

func (f Form) Value(name string) string {
	if f.Values == nil {
		return ""
	}
	return f.Values.Get(name)
}

func (f Form) upload(name string) *validation.Upload {
	file, ok := f.Files[name]
	if !ok || file == nil || len(file.Data) == 0 {
		return nil
	}
	return &validation.Upload{Filename: file.Filename, Data: file.Data}
}
