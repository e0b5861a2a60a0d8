package validation

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/smallbiznis/dashboard/internal/config"
	invoicedomain "github.com/smallbiznis/dashboard/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newValidator(t *testing.T, policy config.UploadPolicy) *Validator {
	t.Helper()
	return New(config.NewStaticUploadPolicyHolder(policy), zaptest.NewLogger(t))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCustomerMissingName(t *testing.T) {
	v := newValidator(t, config.DefaultUploadPolicy())

	res := v.Customer(OpCreate, CustomerInput{
		Name:  "",
		Email: "a@b.com",
		Image: &Upload{Filename: "photo.png", Data: pngBytes(t)},
	})

	require.False(t, res.Valid())
	assert.Equal(t, FieldErrors{FieldName: {MsgNameRequired}}, res.Errors())
	assert.Equal(t, "Missing Fields. Failed to Create Customer.", res.Message())
}

func TestCustomerCollectsEveryViolation(t *testing.T) {
	v := newValidator(t, config.DefaultUploadPolicy())

	res := v.Customer(OpCreate, CustomerInput{})

	require.False(t, res.Valid())
	errs := res.Errors()
	assert.Equal(t, []string{MsgNameRequired}, errs[FieldName])
	assert.Equal(t, []string{MsgEmailRequired, MsgEmailInvalid}, errs[FieldEmail])
	assert.Equal(t, []string{MsgImageRequired}, errs[FieldImage])
}

func TestCustomerMalformedEmail(t *testing.T) {
	v := newValidator(t, config.DefaultUploadPolicy())

	res := v.Customer(OpUpdate, CustomerInput{Name: "Amy", Email: "not-an-email"})

	require.False(t, res.Valid())
	assert.Equal(t, FieldErrors{FieldEmail: {MsgEmailInvalid}}, res.Errors())
	assert.Equal(t, "Missing Fields. Failed to Update Customer.", res.Message())
}

func TestCustomerUpdateKeepsImage(t *testing.T) {
	v := newValidator(t, config.DefaultUploadPolicy())

	res := v.Customer(OpUpdate, CustomerInput{Name: " Amy ", Email: "amy@example.com"})

	require.True(t, res.Valid())
	assert.Equal(t, "Amy", res.Value().Name)
	assert.Nil(t, res.Value().Image)
}

func TestCustomerImagePolicy(t *testing.T) {
	policy := config.DefaultUploadPolicy()
	policy.MaxBytes = 16
	v := newValidator(t, policy)

	res := v.Customer(OpCreate, CustomerInput{
		Name:  "Amy",
		Email: "amy@example.com",
		Image: &Upload{Filename: "photo.gif", Data: []byte("GIF89a" + string(make([]byte, 32)))},
	})

	require.False(t, res.Valid())
	assert.Equal(t, []string{"Only PNG format is allowed", "Image must be at most 16 bytes"}, res.Errors()[FieldImage])
}

func TestCustomerAcceptsPNG(t *testing.T) {
	v := newValidator(t, config.DefaultUploadPolicy())

	res := v.Customer(OpCreate, CustomerInput{
		Name:  "Amy",
		Email: "amy@example.com",
		Image: &Upload{Filename: "photo.png", Data: pngBytes(t)},
	})

	require.True(t, res.Valid())
	assert.Equal(t, "image/png", res.Value().ContentType)
	assert.Equal(t, ".png", res.Value().Extension)
}

func TestInvoiceZeroAmount(t *testing.T) {
	v := newValidator(t, config.DefaultUploadPolicy())

	res := v.Invoice(OpCreate, InvoiceInput{CustomerID: "c1", Amount: "0", Status: "pending"})

	require.False(t, res.Valid())
	assert.Equal(t, FieldErrors{FieldAmount: {MsgAmountPositive}}, res.Errors())
	assert.Equal(t, "Missing Fields. Failed to Create Invoice.", res.Message())
}

func TestInvoiceAmountCoercion(t *testing.T) {
	v := newValidator(t, config.DefaultUploadPolicy())

	cases := map[string]string{
		"":      MsgAmountPositive,
		"-3":    MsgAmountPositive,
		"0.001": MsgAmountPositive,
		"abc":   MsgAmountInvalid,
		"1,000": MsgAmountInvalid,
	}
	for raw, want := range cases {
		res := v.Invoice(OpUpdate, InvoiceInput{CustomerID: "c1", Amount: raw, Status: "paid"})
		require.False(t, res.Valid(), raw)
		assert.Equal(t, []string{want}, res.Errors()[FieldAmount], raw)
	}
}

func TestInvoiceAllFieldsInvalid(t *testing.T) {
	v := newValidator(t, config.DefaultUploadPolicy())

	res := v.Invoice(OpCreate, InvoiceInput{Status: "draft", Amount: "x"})

	require.False(t, res.Valid())
	assert.Equal(t, FieldErrors{
		FieldCustomerID: {MsgCustomerMissing},
		FieldAmount:     {MsgAmountInvalid},
		FieldStatus:     {MsgStatusInvalid},
	}, res.Errors())
}

func TestInvoiceValid(t *testing.T) {
	v := newValidator(t, config.DefaultUploadPolicy())

	res := v.Invoice(OpCreate, InvoiceInput{CustomerID: " c1 ", Amount: "12.50", Status: "pending"})

	require.True(t, res.Valid())
	assert.Equal(t, "c1", res.Value().CustomerID)
	assert.Equal(t, invoicedomain.StatusPending, res.Value().Status)
	cents, ok := invoicedomain.ToCents(res.Value().Amount)
	assert.True(t, ok)
	assert.EqualValues(t, 1250, cents)
}

func TestInvoiceAmountShorthandForms(t *testing.T) {
	v := newValidator(t, config.DefaultUploadPolicy())

	cases := map[string]int64{
		".5":  50,
		"1e3": 100000,
		"+7":  700,
	}
	for raw, want := range cases {
		res := v.Invoice(OpCreate, InvoiceInput{CustomerID: "c1", Amount: raw, Status: "paid"})
		require.True(t, res.Valid(), raw)
		cents, ok := invoicedomain.ToCents(res.Value().Amount)
		assert.True(t, ok, raw)
		assert.Equal(t, want, cents, raw)
	}
}

func TestInvoiceAmountOutOfRange(t *testing.T) {
	v := newValidator(t, config.DefaultUploadPolicy())

	for _, raw := range []string{"92233720368547758.08", "184467440737095516.17", "1e40"} {
		res := v.Invoice(OpCreate, InvoiceInput{CustomerID: "c1", Amount: raw, Status: "pending"})
		require.False(t, res.Valid(), raw)
		assert.Equal(t, []string{MsgAmountTooLarge}, res.Errors()[FieldAmount], raw)
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Only PNG format is allowed", allowedTypesMessage([]string{"image/png"}))
	assert.Equal(t, "Only PNG, JPEG or WEBP formats are allowed", allowedTypesMessage([]string{"image/png", "image/jpeg", "image/webp"}))
	assert.Equal(t, "Image must be at most 5MB", maxSizeMessage(5<<20))
	assert.Equal(t, "Image must be at most 512KB", maxSizeMessage(512<<10))
}
