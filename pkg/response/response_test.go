package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fail(t *testing.T, err error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	Fail(c, err)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestFail(t *testing.T) {
	wrapped := fmt.Errorf("failed to route: %w", apperrors.ErrNoPath.WithDetail("start_node", 4))
	rec, body := fail(t, wrapped)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NO_PATH", body.Error.Code)
	assert.Equal(t, float64(4), body.Error.Details["start_node"])

	rec, body = fail(t, apperrors.ErrInvalidRating)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FEEDBACK", body.Error.Type)

	// Data-integrity failures are internal and keep their message private
	rec, body = fail(t, apperrors.ErrMalformedSegment.WithMessage("segment 3: bad"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body.Message)

	rec, body = fail(t, errors.New("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, body.Error)
}
