package utils

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	err := E(CodeInternal, "UserService.Get", "failed to load user", cause)
	assert.Equal(t, "UserService.Get: failed to load user: dial tcp: refused", err.Error())

	assert.Equal(t, "UserService.Get: failed to load user",
		E(CodeInternal, "UserService.Get", "failed to load user", nil).Error())
	assert.Equal(t, "failed to load user",
		E(CodeInternal, "", "failed to load user", nil).Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("no rows")
	err := E(CodeNotFound, "WelfareRepo.GetByID", "service not found", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(err, CodeInternal))
	assert.False(t, IsCode(cause, CodeNotFound))
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := E(CodeConflict, "UserRepo.Create", "email already registered", nil)
	outer := E(CodeInternal, "UserService.Register", "registration failed", inner)

	// errors.As finds the outermost AppError
	assert.True(t, IsCode(outer, CodeInternal))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(E(tc.code, "op", "msg", nil)), string(tc.code))
	}

	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
