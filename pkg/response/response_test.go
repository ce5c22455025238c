package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOKReportsSliceCount(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	OK(c, []string{"a", "b"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []string       `json:"data"`
		Meta map[string]int `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b"}, body.Data)
	assert.Equal(t, 2, body.Meta["count"])
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestErrorUsesStatusAndCode(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, appErrors.Clone(appErrors.ErrNoSeats, "course IA-01 has no seats available"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NO_SEATS_AVAILABLE"`)
	assert.Empty(t, c.Errors)
}

func TestErrorRecordsServerFailures(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, c.Errors, 1)
	assert.Contains(t, rec.Body.String(), `"code":"INTERNAL_ERROR"`)
}
