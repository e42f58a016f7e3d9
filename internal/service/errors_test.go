package service

import (
	"errors"
	"fmt"
	"testing"

	"backoffice/internal/repository"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{fmt.Errorf("%w: x", ErrInvalidState), KindState},
		{fmt.Errorf("%w: x", ErrUnauthorizedTier), KindAuthorization},
		{fmt.Errorf("%w: x", ErrDuplicateDecision), KindDuplicate},
		{fmt.Errorf("%w: x", ErrConfiguration), KindConfiguration},
		{fmt.Errorf("%w: x", ErrConcurrencyConflict), KindConflict},
		{fmt.Errorf("%w: x", ErrNotFound), KindNotFound},
		{fmt.Errorf("%w: x", ErrValidation), KindValidation},
		{errors.New("disk on fire"), KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "%v", tt.err)
	}
}

func TestTranslateRepoErr(t *testing.T) {
	assert.NoError(t, translateRepoErr(nil, "proposal"))
	assert.ErrorIs(t, translateRepoErr(gorm.ErrRecordNotFound, "proposal"), ErrNotFound)
	assert.ErrorIs(t, translateRepoErr(repository.ErrVersionConflict, "proposal"), ErrConcurrencyConflict)
	assert.ErrorIs(t, translateRepoErr(gorm.ErrDuplicatedKey, "proposal"), ErrConcurrencyConflict)

	other := errors.New("boom")
	err := translateRepoErr(other, "proposal")
	assert.ErrorIs(t, err, other)
	assert.Equal(t, KindInternal, KindOf(err))
}
