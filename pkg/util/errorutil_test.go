package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		kind   ErrorKind
		status int
	}{
		{name: "no rows", err: fmt.Errorf("load: %w", pgx.ErrNoRows), kind: KindNotFound, status: http.StatusNotFound},
		{name: "foreign", err: errors.New("boom"), kind: KindInternal, status: http.StatusInternalServerError},
		{name: "domain passthrough", err: NewConflictCode(CodeTicketClosed, "closed", nil), kind: KindConflict, status: http.StatusConflict},
		{name: "delivery", err: NewDeliveryError("send", nil, errors.New("smtp")), kind: KindDelivery, status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.kind, de.Kind)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestDomainErrorMatching(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("dispatch: %w", NewDeliveryError("telegram failed", nil, cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeDeliveryFailed))
	assert.Equal(t, KindDelivery, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(cause))
	assert.ErrorIs(t, err, &DomainError{Code: CodeDeliveryFailed})
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	type payload struct {
		BotName string `json:"botName" validate:"required"`
		Email   string `json:"email,omitempty" validate:"omitempty,email"`
	}

	err := ValidateStruct(payload{Email: "nope"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	fields := FieldErrors(err)
	assert.Equal(t, "required", fields["botName"])
	assert.Equal(t, "email", fields["email"])

	assert.NoError(t, ValidateStruct(payload{BotName: "ops"}))
}
