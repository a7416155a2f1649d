package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal", errors.CodeInternal, "unexpected failure"},
		{"malformed", errors.CodeMalformedFormula, "unbalanced brackets"},
		{"empty", errors.CodeEmptyComposition, "no atoms"},
		{"solver", errors.CodeSolverInternal, "pivot bound exceeded"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)
			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.Contains(t, ae.Stack, "errors_test.go")
		})
	}
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeMalformedFormula, "malformed formula")
	assert.Equal(t, "[CHEM_001] malformed formula", ae.Error())

	withDetail := ae.WithDetail("(C H3")
	assert.Equal(t, "[CHEM_001] malformed formula: (C H3", withDetail.Error())

	wrapped := errors.Wrap(fmt.Errorf("disk gone"), errors.CodeCorpusInvalid, "read corpus")
	assert.Equal(t, "[CHEM_005] read corpus: disk gone", wrapped.Error())
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "ignored"))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeEmptyComposition, "empty composition")
	outer := errors.Wrap(inner, errors.CodeUnknown, "normalise query")

	assert.Equal(t, errors.CodeEmptyComposition, outer.Code)
	assert.Same(t, inner, outer.Cause)
}

func TestWrap_OverridesCodeWhenGiven(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeEmptyComposition, "empty composition")
	outer := errors.Wrap(inner, errors.CodeCorpusInvalid, "corpus row")

	assert.Equal(t, errors.CodeCorpusInvalid, outer.Code)
	assert.True(t, errors.IsCode(outer, errors.CodeEmptyComposition))
	assert.True(t, errors.IsCode(outer, errors.CodeCorpusInvalid))
}

func TestWithDetail_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	sentinel := errors.New(errors.CodeMalformedFormula, "malformed formula")
	clone := sentinel.WithDetail("((")

	assert.Empty(t, sentinel.Detail)
	assert.Equal(t, "((", clone.Detail)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithDetail("x"))
	assert.Nil(t, nilErr.WithCause(stderrors.New("x")))
}

func TestIs_MatchesSentinelClones(t *testing.T) {
	t.Parallel()

	sentinel := errors.New(errors.CodeMalformedFormula, "malformed formula")
	clone := sentinel.WithDetailf("formula=%q", "(C")
	wrapped := fmt.Errorf("parse: %w", clone)

	assert.True(t, stderrors.Is(wrapped, sentinel))
	assert.False(t, stderrors.Is(wrapped, errors.New(errors.CodeEmptyComposition, "x")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeSolverInternal,
		errors.GetCode(fmt.Errorf("ctx: %w", errors.New(errors.CodeSolverInternal, "x"))))
}

func TestIsCode_PlainErrorIsFalse(t *testing.T) {
	t.Parallel()
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.CodeInternal))
	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
}

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatusForCode(errors.CodeMalformedFormula))
	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatusForCode(errors.CodeEmptyComposition))
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatusForCode(errors.CodeSolverInternal))
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatusForCode("NOPE_1"))
	assert.True(t, errors.IsClientError(errors.CodeInvalidDistribution))
	assert.False(t, errors.IsClientError(errors.CodeSolverInternal))
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "CHEM", errors.ModuleForCode(errors.CodeMalformedFormula))
	assert.Equal(t, "COMMON", errors.ModuleForCode(errors.CodeInternal))
	assert.Equal(t, "UNKNOWN", errors.ModuleForCode(errors.CodeOK))
	assert.Equal(t, "malformed formula", errors.DefaultMessageForCode(errors.CodeMalformedFormula))
	assert.Equal(t, "unknown error", errors.DefaultMessageForCode("X"))
}
