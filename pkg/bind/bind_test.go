package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createUser struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

func TestJSONDecodesValidBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/users", strings.NewReader(`{"name": "Ada", "email": "ada@example.com"}`))

	var in createUser
	errs, err := JSON(r, &in)
	require.NoError(t, err)
	require.Nil(t, errs)
	assert.Equal(t, "Ada", in.Name)
	assert.Equal(t, "ada@example.com", in.Email)
}

func TestJSONReportsValidationFailures(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/users", strings.NewReader(`{"name": "A", "email": "not-an-email"}`))

	var in createUser
	errs, err := JSON(r, &in)
	require.NoError(t, err)
	require.NotNil(t, errs)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
}

func TestJSONRejectsMalformedBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/users", strings.NewReader(`{"name": `))

	var in createUser
	errs, err := JSON(r, &in)
	assert.Error(t, err)
	assert.Nil(t, errs)
}

func TestJSONRejectsOversizedBody(t *testing.T) {
	huge := `{"name": "` + strings.Repeat("x", MaxBodyBytes+1) + `"}`
	r := httptest.NewRequest("POST", "/api/users", strings.NewReader(huge))

	var in createUser
	_, err := JSON(r, &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
