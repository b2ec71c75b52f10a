package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthenticated, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeEmptyCart, status: http.StatusBadRequest, publicMsg: "cart is empty"},
		{code: CodeCatalogUnavailable, status: http.StatusServiceUnavailable, publicMsg: "product catalog unavailable", retryable: true, detailsOK: true},
		{code: CodeUploadFailed, status: http.StatusBadGateway, publicMsg: "image upload failed", retryable: true, detailsOK: true},
		{code: CodeNetworkTimeout, status: http.StatusGatewayTimeout, publicMsg: "request timed out", retryable: true},
		{code: CodeServerRejected, status: http.StatusUnprocessableEntity, publicMsg: "request rejected by server", detailsOK: true},
		{code: CodeUnsupported, status: http.StatusMethodNotAllowed, publicMsg: "operation not supported"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Code
	}{
		{http.StatusUnauthorized, CodeUnauthenticated},
		{http.StatusForbidden, CodeUnauthenticated},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusMethodNotAllowed, CodeUnsupported},
		{http.StatusNotImplemented, CodeUnsupported},
		{http.StatusRequestTimeout, CodeNetworkTimeout},
		{http.StatusGatewayTimeout, CodeNetworkTimeout},
		{http.StatusBadRequest, CodeServerRejected},
		{http.StatusUnprocessableEntity, CodeServerRejected},
		{http.StatusInternalServerError, CodeDependency},
		{http.StatusBadGateway, CodeDependency},
		{http.StatusOK, CodeInternal},
	}

	for _, tt := range tests {
		if got := CodeForStatus(tt.status); got != tt.want {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.want, got)
		}
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeUploadFailed, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeUploadFailed {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestHasCode(t *testing.T) {
	err := New(CodeEmptyCart, "nothing to buy")
	if !HasCode(err, CodeEmptyCart) {
		t.Fatalf("HasCode should match")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatalf("HasCode should not match a different code")
	}
	if HasCode(nil, CodeEmptyCart) {
		t.Fatalf("HasCode(nil) should be false")
	}
}
