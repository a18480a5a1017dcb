package validators

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
)

type samplePayload struct {
	Name    string `json:"name" validate:"required,safe_text"`
	Phone   string `json:"phone" validate:"required,co_phone"`
	Email   string `json:"email" validate:"required,email,max=100"`
	Address string `json:"address" validate:"required,min=10,max=200"`
}

func decode(t *testing.T, body string) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	var payload samplePayload
	return DecodeJSONBody(req, &payload)
}

func TestDecodeJSONBodyAccepts(t *testing.T) {
	err := decode(t, `{"name":"Ana María Ruiz","phone":"300 123 4567","email":"ana@example.com","address":"Calle 10 #5-20 Apto 301"}`)
	if err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsUnknownField(t *testing.T) {
	err := decode(t, `{"name":"Ana","phone":"3001234567","email":"ana@example.com","address":"Calle 10 #5-20","admin":true}`)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	err := decode(t, `{"name":`)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyFieldMessagesUseJSONNames(t *testing.T) {
	err := decode(t, `{"name":"Ana","phone":"12345","email":"not-an-email","address":"corta"}`)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected detail map, got %T", typed.Details())
	}
	for _, field := range []string{"phone", "email", "address"} {
		if _, present := details[field]; !present {
			t.Fatalf("expected %s detail, got %v", field, details)
		}
	}
}

func TestColombianPhoneRule(t *testing.T) {
	valid := []string{"3001234567", "300-123-4567", "(300) 123 4567"}
	for _, phone := range valid {
		if err := decode(t, `{"name":"Ana","phone":"`+phone+`","email":"ana@example.com","address":"Calle 10 #5-20"}`); err != nil {
			t.Fatalf("expected %q to pass, got %v", phone, err)
		}
	}

	invalid := []string{"6011234567", "30012345", "30012345678", "abc"}
	for _, phone := range invalid {
		if err := decode(t, `{"name":"Ana","phone":"`+phone+`","email":"ana@example.com","address":"Calle 10 #5-20"}`); err == nil {
			t.Fatalf("expected %q to fail", phone)
		}
	}
}

func TestSafeTextRule(t *testing.T) {
	if err := decode(t, `{"name":"Señora Ñáñez (depto. 2-B) #4/1","phone":"3001234567","email":"ana@example.com","address":"Calle 10 #5-20"}`); err != nil {
		t.Fatalf("expected accented text to pass, got %v", err)
	}
	if err := decode(t, `{"name":"Ana <script>","phone":"3001234567","email":"ana@example.com","address":"Calle 10 #5-20"}`); err == nil {
		t.Fatal("expected angle brackets to fail")
	}
}

func TestValidPhoneWithPrefixDigitsOnly(t *testing.T) {
	// The +57 country prefix strips to 573001234567, which is 12 digits.
	if err := decode(t, `{"name":"Ana","phone":"+573001234567","email":"ana@example.com","address":"Calle 10 #5-20"}`); err == nil {
		t.Fatal("expected 12-digit number to fail")
	}
}
