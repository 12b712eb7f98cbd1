package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	err := New(ErrCodeFileNotFound, "file vanished during crawl", nil)

	assert.Equal(t, CategoryIO, err.Category)
	assert.Equal(t, SeverityError, err.Severity)
	assert.Contains(t, err.Error(), "ERR_201_FILE_NOT_FOUND")
}

func TestStoreCorrupt_IsFatal(t *testing.T) {
	err := StoreCorrupt("integrity check failed", nil)

	assert.True(t, IsFatal(err))
	assert.Equal(t, CategoryStore, err.Category)
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := Wrap(ErrCodeFilePermission, cause)

	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeFilePermission, GetCode(err))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(ErrCodeTruncated, "page cap applied", nil)
	b := New(ErrCodeTruncated, "different message", nil)
	c := New(ErrCodeExtractionFailed, "corrupt file", nil)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestWithPath(t *testing.T) {
	err := New(ErrCodeExtractionFailed, "bad xref table", nil).WithPath("/docs/a.pdf")

	assert.Contains(t, err.Error(), "/docs/a.pdf")
}

func TestFromIO_ClassifiesByCause(t *testing.T) {
	cases := []struct {
		cause error
		code  string
	}{
		{os.ErrNotExist, ErrCodeFileNotFound},
		{os.ErrPermission, ErrCodeFilePermission},
		{fmt.Errorf("disk yanıyor"), ErrCodeInternal},
	}
	for _, tc := range cases {
		err := FromIO("/docs/a.txt", fmt.Errorf("read: %w", tc.cause))
		assert.Equal(t, tc.code, err.Code)
		assert.Equal(t, "/docs/a.txt", err.Path)
	}
}

func TestIsFatal_PlainError(t *testing.T) {
	assert.False(t, IsFatal(fmt.Errorf("plain")))
	assert.False(t, IsFatal(nil))
}
