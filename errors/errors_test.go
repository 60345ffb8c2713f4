package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestBackend_CodeAndMessage(t *testing.T) {
	req := require.New(t)

	err := Backend(codes.NotFound, "row %s not found", "42")

	req.Equal(codes.NotFound, Code(err))
	req.Equal("row 42 not found", Message(err))
	req.True(IsNotFound(err))
}

func TestCode_PlainError(t *testing.T) {
	req := require.New(t)

	req.Equal(codes.OK, Code(nil))
	req.Equal(codes.Unknown, Code(fmt.Errorf("boom")))
	req.Equal("boom", Message(fmt.Errorf("boom")))
}
