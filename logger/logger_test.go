package logger

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFields(t *testing.T) {
	assert.Equal(t, "", formatFields(nil))
	assert.Equal(t, "{b=1, c=0.50, z=x}", formatFields(Fields{"z": "x", "b": 1, "c": 0.5}))
}

func TestWithRequest(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/parse", nil)
	req = req.WithContext(ContextWithRequestID(req.Context(), "abc"))

	assert.Equal(t, Fields{"request_id": "abc", "method": "POST", "path": "/api/parse"}, WithRequest(req))
	assert.Equal(t, "", RequestID(context.Background()))
}
