package application

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAllowedFields(t *testing.T) {
	assert.NoError(t, CheckAllowedFields([]string{"description"}, "description", "completed"))
	assert.NoError(t, CheckAllowedFields(nil, "description"))

	err := CheckAllowedFields([]string{"completed", "foo", "owner"}, "description", "completed")
	var ife *InvalidFieldsError
	require.True(t, errors.As(err, &ife))
	assert.Equal(t, []string{"foo", "owner"}, ife.Invalid)
	assert.Equal(t, "you may only update description, completed", ife.Error())
}

func TestCheckID(t *testing.T) {
	assert.NoError(t, CheckID(uuid.NewString()))
	for _, bad := range []string{"", "123", "not-a-uuid", "5f1b2c3d4e5f6a7b8c9d0e1f"} {
		assert.ErrorIs(t, CheckID(bad), ErrInvalidID, bad)
	}

	id := uuid.NewString()
	noncanonical := []string{
		strings.ToUpper(id),
		"{" + id + "}",
		"urn:uuid:" + id,
		strings.ReplaceAll(id, "-", ""),
	}
	for _, bad := range noncanonical {
		assert.ErrorIs(t, CheckID(bad), ErrInvalidID, bad)
	}
}
