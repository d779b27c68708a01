package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestBotErrorMessageAndCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewBotError("lookup failed", CodeService, 500, map[string]any{"service": "crm"}).WithCause(cause)

	if got := err.Error(); got != "lookup failed: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}
}

func TestTypedConstructorsCarryCodeAndCause(t *testing.T) {
	cause := fmt.Errorf("boom")

	crmErr := NewCRMError("query rejected", "query", "Opportunity", 400, cause)
	if crmErr.Code != CodeCRM || crmErr.StatusCode != 400 {
		t.Errorf("CRMError code/status = %s/%d", crmErr.Code, crmErr.StatusCode)
	}
	if !stderrors.Is(crmErr, cause) {
		t.Error("CRMError should unwrap to its cause")
	}

	cacheErr := NewCacheError("set failed", "set", "salesops:accounts", cause)
	if cacheErr.Code != CodeCache || cacheErr.Key != "salesops:accounts" {
		t.Errorf("CacheError code/key = %s/%s", cacheErr.Code, cacheErr.Key)
	}

	svcErr := NewServiceError("unreachable", "postgres", "ping", cause)
	if svcErr.Code != CodeService || !stderrors.Is(svcErr, cause) {
		t.Errorf("ServiceError code = %s, cause reachable = %v", svcErr.Code, stderrors.Is(svcErr, cause))
	}

	valErr := NewValidationError("REDIS_HOST is required", "redis.host", nil)
	if valErr.Code != CodeValidation || valErr.StatusCode != 400 {
		t.Errorf("ValidationError code/status = %s/%d", valErr.Code, valErr.StatusCode)
	}
	if valErr.Cause != nil {
		t.Error("ValidationError should have no cause")
	}
}
