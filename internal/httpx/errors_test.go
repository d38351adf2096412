package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"dns_manager/internal/cloudflare"
	"dns_manager/internal/reconcile"
	"dns_manager/internal/store"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without internal err",
			err:  NewAppError(http.StatusBadRequest, CodeParamMissing, "param missing", nil),
			want: "code=2001, message=param missing",
		},
		{
			name: "error with internal err",
			err:  NewAppError(http.StatusInternalServerError, CodeInternalError, "internal error", errors.New("db connection failed")),
			want: "code=5001, message=internal error, err=db connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrUnauthorized(t *testing.T) {
	err := ErrUnauthorized("")
	if err.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("Expected HTTP status %d, got %d", http.StatusUnauthorized, err.HTTPStatus)
	}
	if err.Code != CodeUnauthorized {
		t.Errorf("Expected code %d, got %d", CodeUnauthorized, err.Code)
	}
	if err.Message != "unauthorized" {
		t.Errorf("Expected message 'unauthorized', got '%s'", err.Message)
	}
}

func TestErrDomainBusy(t *testing.T) {
	err := ErrDomainBusy("")
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("Expected HTTP status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
	if err.Code != CodeDomainBusy {
		t.Errorf("Expected code %d, got %d", CodeDomainBusy, err.Code)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{
			name:       "record not found",
			err:        fmt.Errorf("loading record: %w", store.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
		},
		{
			name:       "duplicate matching key",
			err:        store.ErrDuplicateKey,
			wantStatus: http.StatusConflict,
			wantCode:   CodeAlreadyExists,
		},
		{
			name:       "invalid record",
			err:        fmt.Errorf("MX record requires a priority: %w", store.ErrInvalidRecord),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeParamIllegal,
		},
		{
			name:       "domain busy",
			err:        reconcile.ErrBusy,
			wantStatus: http.StatusConflict,
			wantCode:   CodeDomainBusy,
		},
		{
			name:       "zone not resolved",
			err:        reconcile.ErrZoneNotResolved,
			wantStatus: http.StatusConflict,
			wantCode:   CodeZoneUnresolved,
		},
		{
			name:       "proxy toggle on wrong type",
			err:        fmt.Errorf("TXT records cannot be proxied: %w", reconcile.ErrInvalidOperation),
			wantStatus: http.StatusConflict,
			wantCode:   CodeStateConflict,
		},
		{
			name:       "provider auth failure",
			err:        &cloudflare.AuthError{Message: "invalid token"},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeUpstreamAuth,
		},
		{
			name:       "provider server error",
			err:        &cloudflare.ProviderError{StatusCode: 503, Message: "service unavailable"},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeUpstreamError,
		},
		{
			name:       "network failure",
			err:        &cloudflare.NetworkError{Err: errors.New("timeout")},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeUpstreamError,
		},
		{
			name:       "unknown error",
			err:        errors.New("something odd"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternalError,
		},
		{
			name:       "app error passes through",
			err:        ErrForbidden("admin only"),
			wantStatus: http.StatusForbidden,
			wantCode:   CodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			if got.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", got.HTTPStatus, tt.wantStatus)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", got.Code, tt.wantCode)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		min  int
		max  int
	}{
		{"CodeSuccess", CodeSuccess, 0, 0},
		{"CodeUnauthorized", CodeUnauthorized, 1000, 1099},
		{"CodeInvalidToken", CodeInvalidToken, 1000, 1099},
		{"CodeTokenExpired", CodeTokenExpired, 1000, 1099},
		{"CodeForbidden", CodeForbidden, 1000, 1099},
		{"CodeParamMissing", CodeParamMissing, 2000, 2099},
		{"CodeParamInvalid", CodeParamInvalid, 2000, 2099},
		{"CodeParamIllegal", CodeParamIllegal, 2000, 2099},
		{"CodeNotFound", CodeNotFound, 3000, 3999},
		{"CodeAlreadyExists", CodeAlreadyExists, 3000, 3999},
		{"CodeStateConflict", CodeStateConflict, 3000, 3999},
		{"CodeDomainBusy", CodeDomainBusy, 3000, 3999},
		{"CodeZoneUnresolved", CodeZoneUnresolved, 3000, 3999},
		{"CodeInternalError", CodeInternalError, 5000, 5999},
		{"CodeDatabaseError", CodeDatabaseError, 5000, 5999},
		{"CodeUpstreamError", CodeUpstreamError, 5000, 5999},
		{"CodeUpstreamAuth", CodeUpstreamAuth, 5000, 5999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code < tt.min || tt.code > tt.max {
				t.Errorf("%s = %d, expected to be in range [%d, %d]", tt.name, tt.code, tt.min, tt.max)
			}
		})
	}
}
