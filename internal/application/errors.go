package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("unable to login")
	ErrUnauthorized       = errors.New("please authenticate")
	// ErrInvalidID means the id is not well formed; it is checked before any lookup.
	ErrInvalidID = errors.New("invalid id")
	// ErrNotFound is returned for missing resources and for resources owned by someone else.
	ErrNotFound = errors.New("not found")
)

// InvalidFieldsError rejects an update that names fields outside the allow-list.
type InvalidFieldsError struct {
	Invalid []string
	Allowed []string
}

func (e *InvalidFieldsError) Error() string {
	return fmt.Sprintf("you may only update %s", strings.Join(e.Allowed, ", "))
}

// CheckAllowedFields returns *InvalidFieldsError listing every key not in allowed.
func CheckAllowedFields(keys []string, allowed ...string) error {
	var invalid []string
	for _, k := range keys {
		ok := false
		for _, a := range allowed {
			if k == a {
				ok = true
				break
			}
		}
		if !ok {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) > 0 {
		return &InvalidFieldsError{Invalid: invalid, Allowed: allowed}
	}
	return nil
}

// CheckID accepts only the canonical lowercase hyphenated uuid form that ids
// are stored in. uuid.Parse alone also takes braced, urn and uppercase forms.
func CheckID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return ErrInvalidID
	}
	return nil
}
