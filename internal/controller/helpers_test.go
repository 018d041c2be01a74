package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainErrors.ErrTransactionNotFound, http.StatusNotFound, "not_found"},
		{domainErrors.ErrPaymentMethodNotFound, http.StatusNotFound, "not_found"},
		{domainErrors.ErrProcessorNotFound, http.StatusBadRequest, "unknown_processor"},
		{domainErrors.ErrUnknownBrand, http.StatusBadRequest, "unknown_brand"},
		{domainErrors.ErrCurrencyNotAllowed, http.StatusBadRequest, "currency_not_allowed"},
		{domainErrors.ErrTransactionNotRefundable, http.StatusUnprocessableEntity, "not_refundable"},
		{domainErrors.ErrRefundExceedsRemaining, http.StatusUnprocessableEntity, "refund_exceeds_remaining"},
		{domainErrors.ErrUnsupportedOperation, http.StatusUnprocessableEntity, "unsupported_operation"},
		{domainErrors.ErrProcessingFailed, http.StatusPaymentRequired, "processing_failed"},
		{domainErrors.ErrProcessorUnavailable, http.StatusServiceUnavailable, "processor_unavailable"},
		{domainErrors.ErrLockAcquisitionFailed, http.StatusConflict, "conflict"},
	}

	for _, tc := range cases {
		t.Run(tc.code+"_"+tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeErrorResponse(t, rec).Code)
		})
	}
}

func TestWriteError_WrappedErrorsStillMap(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("requested 1500, remaining 1000: %w", domainErrors.ErrRefundExceedsRemaining))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "refund_exceeds_remaining", decodeErrorResponse(t, rec).Code)
}

func TestWriteError_ValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domainErrors.NewValidationError("amount", "must be greater than 0"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeErrorResponse(t, rec).Code)
}

func TestWriteError_ProcessingErrorTypeMaps(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domainErrors.NewProcessingError("stripe", "tx_1", nil, nil))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestWriteError_UnsupportedOperationType(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domainErrors.NewUnsupportedOperationError("paypal", "void"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "unsupported_operation", decodeErrorResponse(t, rec).Code)
}

func TestWriteError_LockContentionMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("%w: lock held", domainErrors.ErrLockAcquisitionFailed))

	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "concurrent refund in progress, please retry", resp.Error)
}

func TestWriteError_UnknownErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("database connection lost"))

	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", resp.Code)
	// Internal details never leak to the client.
	assert.Equal(t, "internal server error", resp.Error)
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"payable_type":"user","payable_id":"42","amount":1000,"currency":"USD"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var req ChargeRequest
	require.NoError(t, decodeAndValidate(r, &req))
	assert.Equal(t, int64(1000), req.Amount)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	var req ChargeRequest
	err := decodeAndValidate(r, &req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrValidationFailed))
}

func TestDecodeAndValidate_FailsValidation(t *testing.T) {
	body := `{"payable_type":"user","payable_id":"42","amount":-5,"currency":"USD"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var req ChargeRequest
	err := decodeAndValidate(r, &req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrValidationFailed))
}
