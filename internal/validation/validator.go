package validation

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dashboard/internal/config"
	invoicedomain "github.com/smallbiznis/dashboard/internal/invoice/domain"
	"go.uber.org/zap"
)

const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldImage      = "image_url"
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

// Upload is a file attached to a form.
type Upload struct {
	Filename string
	Data     []byte
}

type CustomerInput struct {
	Name  string
	Email string
	Image *Upload
}

// CustomerFields is a validated customer submission. Image is nil on update
// when no new file was chosen; the stored image is kept in that case.
type CustomerFields struct {
	Name        string
	Email       string
	Image       *Upload
	ContentType string
	Extension   string
}

type InvoiceInput struct {
	CustomerID string
	Amount     string
	Status     string
}

type InvoiceFields struct {
	CustomerID string
	Amount     decimal.Decimal
	Status     invoicedomain.Status
}

type rule struct {
	tag     string
	message string
}

var (
	nameRules = []rule{
		{tag: "required", message: MsgNameRequired},
	}
	emailRules = []rule{
		{tag: "required", message: MsgEmailRequired},
		{tag: "email", message: MsgEmailInvalid},
	}
	customerIDRules = []rule{
		{tag: "required", message: MsgCustomerMissing},
	}
	statusRules = []rule{
		{tag: "oneof=" + string(invoicedomain.StatusPending) + " " + string(invoicedomain.StatusPaid), message: MsgStatusInvalid},
	}
)

type Validator struct {
	validate *validator.Validate
	uploads  *config.UploadPolicyHolder
	log      *zap.Logger
}

func New(uploads *config.UploadPolicyHolder, log *zap.Logger) *Validator {
	return &Validator{
		validate: validator.New(),
		uploads:  uploads,
		log:      log.Named("validation"),
	}
}

// Customer checks every customer field and reports all failures at once.
func (v *Validator) Customer(op Op, in CustomerInput) Result[CustomerFields] {
	errs := FieldErrors{}
	out := CustomerFields{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
	}

	v.check(errs, FieldName, out.Name, nameRules)
	v.check(errs, FieldEmail, out.Email, emailRules)

	switch {
	case in.Image != nil && len(in.Image.Data) > 0:
		policy := v.uploads.Get()
		detected := mimetype.Detect(in.Image.Data)
		if !policy.Allows(detected.String()) {
			errs.Add(FieldImage, allowedTypesMessage(policy.AllowedTypes))
		}
		if int64(len(in.Image.Data)) > policy.MaxBytes {
			errs.Add(FieldImage, maxSizeMessage(policy.MaxBytes))
		}
		out.Image = in.Image
		out.ContentType = detected.String()
		out.Extension = detected.Extension()
	case op == OpCreate:
		errs.Add(FieldImage, MsgImageRequired)
	}

	if !errs.Empty() {
		v.log.Debug("customer rejected", zap.String("op", string(op)), zap.Strings("fields", fieldNames(errs)))
		return Invalid[CustomerFields](errs, Summary(op, "Customer"))
	}
	return Ok(out)
}

// Invoice checks customer reference, amount and status. Amount is parsed in
// major units (".5" and "1e3" are accepted) and must be positive once
// rounded to cents and fit in an int64 cent count.
func (v *Validator) Invoice(op Op, in InvoiceInput) Result[InvoiceFields] {
	errs := FieldErrors{}
	out := InvoiceFields{
		CustomerID: strings.TrimSpace(in.CustomerID),
		Status:     invoicedomain.Status(strings.TrimSpace(in.Status)),
	}

	v.check(errs, FieldCustomerID, out.CustomerID, customerIDRules)
	v.check(errs, FieldStatus, string(out.Status), statusRules)

	raw := strings.TrimSpace(in.Amount)
	switch {
	case raw == "":
		errs.Add(FieldAmount, MsgAmountPositive)
	default:
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			errs.Add(FieldAmount, MsgAmountInvalid)
			break
		}
		if amount.Sign() <= 0 {
			errs.Add(FieldAmount, MsgAmountPositive)
			break
		}
		cents, ok := invoicedomain.ToCents(amount)
		switch {
		case !ok:
			errs.Add(FieldAmount, MsgAmountTooLarge)
		case cents <= 0:
			errs.Add(FieldAmount, MsgAmountPositive)
		default:
			out.Amount = amount
		}
	}

	if !errs.Empty() {
		v.log.Debug("invoice rejected", zap.String("op", string(op)), zap.Strings("fields", fieldNames(errs)))
		return Invalid[InvoiceFields](errs, Summary(op, "Invoice"))
	}
	return Ok(out)
}

func (v *Validator) check(errs FieldErrors, field, value string, rules []rule) {
	for _, r := range rules {
		if err := v.validate.Var(value, r.tag); err != nil {
			errs.Add(field, r.message)
		}
	}
}

func fieldNames(errs FieldErrors) []string {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	return names
}
