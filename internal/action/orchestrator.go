package action

import (
	"context"
	"fmt"

	auditdomain "github.com/smallbiznis/dashboard/internal/audit/domain"
	authdomain "github.com/smallbiznis/dashboard/internal/auth/domain"
	customerdomain "github.com/smallbiznis/dashboard/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/dashboard/internal/invoice/domain"
	"github.com/smallbiznis/dashboard/internal/observability/logger"
	"github.com/smallbiznis/dashboard/internal/observability/metrics"
	"github.com/smallbiznis/dashboard/internal/observability/tracing"
	"github.com/smallbiznis/dashboard/internal/validation"
	"github.com/smallbiznis/dashboard/internal/viewcache"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const msgStoreImage = "Failed to Store Image."

// ImageWriter stores an uploaded customer image and returns its public path.
type ImageWriter interface {
	SaveCustomerImage(ctx context.Context, filename string, data []byte, contentType, ext string) (string, error)
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Validator *validation.Validator
	Customers customerdomain.Service
	Invoices  invoicedomain.Service
	Images    ImageWriter
	Cache     viewcache.Cache
	SignIn    CredentialsSignIn
	Audit     auditdomain.Service `optional:"true"`
	Metrics   *metrics.Metrics    `optional:"true"`
}

// Orchestrator runs validate, persist, invalidate and redirect for every form.
type Orchestrator struct {
	log       *zap.Logger
	validator *validation.Validator
	customers customerdomain.Service
	invoices  invoicedomain.Service
	images    ImageWriter
	cache     viewcache.Cache
	signIn    CredentialsSignIn
	audit     auditdomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) *Orchestrator {
	return &Orchestrator{
		log:       p.Log.Named("action.orchestrator"),
		validator: p.Validator,
		customers: p.Customers,
		invoices:  p.Invoices,
		images:    p.Images,
		cache:     p.Cache,
		signIn:    p.SignIn,
		audit:     p.Audit,
		metrics:   p.Metrics,
	}
}

func (o *Orchestrator) CreateCustomer(ctx context.Context, sess *authdomain.Session, prev State, form Form) (result Result) {
	ctx, done := o.begin(ctx, sess, prev, "customer", "create")
	defer func() { done(result) }()

	res := o.validator.Customer(validation.OpCreate, validation.CustomerInput{
		Name:  form.Value(validation.FieldName),
		Email: form.Value(validation.FieldEmail),
		Image: form.upload(validation.FieldImage),
	})
	if !res.Valid() {
		return fail(res.Message(), res.Errors())
	}
	fields := res.Value()

	imageURL, err := o.images.SaveCustomerImage(ctx, fields.Image.Filename, fields.Image.Data, fields.ContentType, fields.Extension)
	if err != nil {
		o.logFor(ctx, sess).Error("store customer image failed", zap.Error(err))
		return fail(msgStoreImage, nil)
	}

	created, err := o.customers.Create(ctx, customerdomain.CreateCustomerRequest{
		Name:     fields.Name,
		Email:    fields.Email,
		ImageURL: imageURL,
	})
	if err != nil {
		return o.databaseFailure(ctx, sess, "Create Customer", err)
	}
	o.record(ctx, sess, auditdomain.ActionCustomerCreate, "customer", created.ID, map[string]any{
		"name": fields.Name,
	})

	return o.redirect(ctx, TargetCustomers, viewcache.RouteCustomers, viewcache.RouteInvoices)
}

// UpdateCustomer replaces name and email. The stored image is kept unless a
// new file was uploaded.
func (o *Orchestrator) UpdateCustomer(ctx context.Context, sess *authdomain.Session, prev State, form Form, id string) (result Result) {
	ctx, done := o.begin(ctx, sess, prev, "customer", "update")
	defer func() { done(result) }()

	res := o.validator.Customer(validation.OpUpdate, validation.CustomerInput{
		Name:  form.Value(validation.FieldName),
		Email: form.Value(validation.FieldEmail),
		Image: form.upload(validation.FieldImage),
	})
	if !res.Valid() {
		return fail(res.Message(), res.Errors())
	}
	fields := res.Value()

	var imageURL string
	if fields.Image != nil {
		path, err := o.images.SaveCustomerImage(ctx, fields.Image.Filename, fields.Image.Data, fields.ContentType, fields.Extension)
		if err != nil {
			o.logFor(ctx, sess).Error("store customer image failed", zap.Error(err))
			return fail(msgStoreImage, nil)
		}
		imageURL = path
	}

	if err := o.customers.Update(ctx, customerdomain.UpdateCustomerRequest{
		ID:       id,
		Name:     fields.Name,
		Email:    fields.Email,
		ImageURL: imageURL,
	}); err != nil {
		return o.databaseFailure(ctx, sess, "Update Customer", err)
	}
	o.record(ctx, sess, auditdomain.ActionCustomerUpdate, "customer", id, map[string]any{
		"name":          fields.Name,
		"image_changed": imageURL != "",
	})

	return o.redirect(ctx, TargetCustomers, viewcache.RouteCustomers, viewcache.RouteInvoices)
}

func (o *Orchestrator) CreateInvoice(ctx context.Context, sess *authdomain.Session, prev State, form Form) (result Result) {
	ctx, done := o.begin(ctx, sess, prev, "invoice", "create")
	defer func() { done(result) }()

	fields, failure := o.validateInvoice(ctx, sess, validation.OpCreate, form)
	if failure != nil {
		return *failure
	}

	created, err := o.invoices.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: fields.CustomerID,
		Amount:     fields.Amount,
		Status:     fields.Status,
	})
	if err != nil {
		return o.databaseFailure(ctx, sess, "Create Invoice", err)
	}
	o.record(ctx, sess, auditdomain.ActionInvoiceCreate, "invoice", created.ID, invoiceMetadata(fields))

	return o.redirect(ctx, TargetInvoices, viewcache.RouteInvoices, viewcache.RouteCustomers)
}

func (o *Orchestrator) UpdateInvoice(ctx context.Context, sess *authdomain.Session, id string, prev State, form Form) (result Result) {
	ctx, done := o.begin(ctx, sess, prev, "invoice", "update")
	defer func() { done(result) }()

	fields, failure := o.validateInvoice(ctx, sess, validation.OpUpdate, form)
	if failure != nil {
		return *failure
	}

	if err := o.invoices.Update(ctx, invoicedomain.UpdateInvoiceRequest{
		ID:         id,
		CustomerID: fields.CustomerID,
		Amount:     fields.Amount,
		Status:     fields.Status,
	}); err != nil {
		return o.databaseFailure(ctx, sess, "Update Invoice", err)
	}
	o.record(ctx, sess, auditdomain.ActionInvoiceUpdate, "invoice", id, invoiceMetadata(fields))

	return o.redirect(ctx, TargetInvoices, viewcache.RouteInvoices, viewcache.RouteCustomers)
}

// DeleteInvoice succeeds whether or not the invoice existed.
func (o *Orchestrator) DeleteInvoice(ctx context.Context, sess *authdomain.Session, id string) (result Result) {
	ctx, done := o.begin(ctx, sess, State{}, "invoice", "delete")
	defer func() { done(result) }()

	if err := o.invoices.Delete(ctx, id); err != nil {
		return o.databaseFailure(ctx, sess, "Delete Invoice", err)
	}
	o.record(ctx, sess, auditdomain.ActionInvoiceDelete, "invoice", id, nil)
	return o.redirect(ctx, TargetInvoices, viewcache.RouteInvoices, viewcache.RouteCustomers)
}

// DeleteCustomer succeeds whether or not the customer existed. Invoices that
// reference the customer are left in place.
func (o *Orchestrator) DeleteCustomer(ctx context.Context, sess *authdomain.Session, id string) (result Result) {
	ctx, done := o.begin(ctx, sess, State{}, "customer", "delete")
	defer func() { done(result) }()

	if err := o.customers.Delete(ctx, id); err != nil {
		return o.databaseFailure(ctx, sess, "Delete Customer", err)
	}
	o.record(ctx, sess, auditdomain.ActionCustomerDelete, "customer", id, nil)
	return o.redirect(ctx, TargetCustomers, viewcache.RouteCustomers, viewcache.RouteInvoices)
}

// validateInvoice runs the field rules and then checks that the customer
// exists, since there is no foreign key to do it for us.
func (o *Orchestrator) validateInvoice(ctx context.Context, sess *authdomain.Session, op validation.Op, form Form) (validation.InvoiceFields, *Failure) {
	res := o.validator.Invoice(op, validation.InvoiceInput{
		CustomerID: form.Value(validation.FieldCustomerID),
		Amount:     form.Value(validation.FieldAmount),
		Status:     form.Value(validation.FieldStatus),
	})
	if !res.Valid() {
		f := fail(res.Message(), res.Errors())
		return validation.InvoiceFields{}, &f
	}
	fields := res.Value()

	exists, err := o.customers.Exists(ctx, fields.CustomerID)
	if err != nil {
		f := o.databaseFailure(ctx, sess, string(op)+" Invoice", err)
		return validation.InvoiceFields{}, &f
	}
	if !exists {
		f := fail(validation.Summary(op, "Invoice"), validation.FieldErrors{
			validation.FieldCustomerID: {validation.MsgCustomerMissing},
		})
		return validation.InvoiceFields{}, &f
	}
	return fields, nil
}

// record writes an audit entry for a completed write. Like view
// revalidation, a failure here does not undo the write.
func (o *Orchestrator) record(ctx context.Context, sess *authdomain.Session, action, targetType, targetID string, metadata map[string]any) {
	if o.audit == nil {
		return
	}
	entry := auditdomain.Entry{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   metadata,
	}
	if sess != nil {
		entry.ActorType = auditdomain.ActorTypeUser
		entry.ActorID = sess.UserID.String()
	}
	if err := o.audit.Record(ctx, entry); err != nil {
		o.logFor(ctx, sess).Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}

func invoiceMetadata(fields validation.InvoiceFields) map[string]any {
	return map[string]any{
		"customer_id": fields.CustomerID,
		"amount":      fields.Amount.StringFixed(2),
		"status":      string(fields.Status),
	}
}

func (o *Orchestrator) databaseFailure(ctx context.Context, sess *authdomain.Session, op string, err error) Failure {
	o.logFor(ctx, sess).Error("persist failed", zap.String("op", op), zap.Error(err))
	return fail(fmt.Sprintf("Database Error: Failed to %s.", op), nil)
}

// redirect marks the affected list views stale and returns the terminal
// Redirect. The write already happened, so invalidation errors are logged
// only.
func (o *Orchestrator) redirect(ctx context.Context, target string, routes ...string) Redirect {
	for _, route := range routes {
		if err := o.cache.Revalidate(ctx, route); err != nil {
			logger.FromContext(ctx).Warn("view revalidation failed", zap.String("route", route), zap.Error(err))
			continue
		}
		o.metrics.RecordInvalidation(ctx, route)
	}
	return Redirect{Target: target}
}

func (o *Orchestrator) begin(ctx context.Context, sess *authdomain.Session, prev State, entity, verb string) (context.Context, func(Result)) {
	ctx, span := tracing.StartSpan(ctx, "action."+verb+"_"+entity,
		attribute.String("entity", entity),
		attribute.String("verb", verb),
	)
	log := o.logFor(ctx, sess).With(zap.String("entity", entity), zap.String("verb", verb))
	if prev.Message != "" {
		log.Debug("resubmission", zap.Int("previous_errors", len(prev.Errors)))
	}

	return ctx, func(result Result) {
		outcome := "success"
		var err error
		if f, ok := result.(Failure); ok {
			outcome = "invalid"
			if f.State.Errors.Empty() {
				outcome = "error"
				err = fmt.Errorf("%s", f.State.Message)
			}
			log.Debug("submission failed", zap.String("message", f.State.Message))
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		tracing.EndSpan(span, err)
		o.metrics.RecordSubmission(ctx, entity, verb, outcome)
	}
}

func (o *Orchestrator) logFor(ctx context.Context, sess *authdomain.Session) *zap.Logger {
	log := logger.WithContext(ctx, o.log)
	if sess != nil {
		log = logger.WithActor(log, "user", sess.UserID.String())
	}
	return log
}
