package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
	Age      int    `json:"age" validate:"gte=0"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(signup{Name: "A", Email: "a@x.com", Password: "tester11"})
	assert.NoError(t, err)
}

func TestStruct_CollectsAllViolations(t *testing.T) {
	err := Struct(signup{Email: "nope", Password: "short1", Age: -1})

	var ve *Error
	require.True(t, errors.As(err, &ve))
	assert.ElementsMatch(t, []string{"name", "email", "password", "age"}, ve.Fields())

	details := ve.Details()
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 8 characters long", details["password"])
	assert.Equal(t, "must be greater than or equal to 0", details["age"])
}

func TestStruct_PasswordWordRejected(t *testing.T) {
	for _, pwd := range []string{"password123", "myPaSsWoRd!", "PASSWORDS"} {
		err := Struct(signup{Name: "A", Email: "a@x.com", Password: pwd})

		var ve *Error
		require.True(t, errors.As(err, &ve), pwd)
		require.Len(t, ve.Violations, 1)
		assert.Equal(t, "nopassword", ve.Violations[0].Tag)
		assert.Empty(t, ve.Violations[0].Value, "password must not be echoed")
	}
}

func TestStruct_PasswordByteLimit(t *testing.T) {
	assert.NoError(t, Struct(signup{Name: "A", Email: "a@x.com", Password: strings.Repeat("x", MaxPasswordBytes)}))

	// 37 two-byte runes: under 72 characters but over 72 bytes
	for _, pwd := range []string{strings.Repeat("x", 100), strings.Repeat("é", 37)} {
		err := Struct(signup{Name: "A", Email: "a@x.com", Password: pwd})

		var ve *Error
		require.True(t, errors.As(err, &ve), "len %d", len(pwd))
		require.Len(t, ve.Violations, 1)
		assert.Equal(t, "bcryptlen", ve.Violations[0].Tag)
		assert.Equal(t, "must be at most 72 bytes long", ve.Details()["password"])
	}
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("email", "a@x.com", "email"))

	err := Var("email", "bad", "email")
	var ve *Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "email", ve.Violations[0].Field)
	assert.Equal(t, "bad", ve.Violations[0].Value)
}

func TestToDetails(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"x": "y"}, ToDetails(NewError("x", "custom", "y")))

	var target struct{ Age int }
	synErr := json.Unmarshal([]byte("{"), &target)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(synErr))

	typeErr := json.Unmarshal([]byte(`{"Age":"old"}`), &target)
	assert.Equal(t, map[string]string{"Age": "must be a int"}, ToDetails(typeErr))

	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Violations: []Violation{{Field: "a", Message: "is required"}, {Field: "b", Message: "is bad"}}}
	assert.Equal(t, "validation failed: a is required; b is bad", err.Error())
}
