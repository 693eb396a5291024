package stream

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-repair/jsonrepair/repair"
)

func TestTransformWriteThenClose(t *testing.T) {
	tr := NewTransform()
	_, err := tr.Write([]byte(`{name: 'Ann'`))
	require.NoError(t, err)
	_, err = tr.Write([]byte(`}`))
	require.NoError(t, err)
	require.NoError(t, tr.Close())

	out, err := readAll(tr)
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Ann"}`, string(out))
}

func TestTransformWriteAfterCloseFails(t *testing.T) {
	tr := NewTransform()
	tr.Write([]byte(`42`))
	require.NoError(t, tr.Close())
	_, err := tr.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTransformReadBeforeCloseFails(t *testing.T) {
	tr := NewTransform()
	buf := make([]byte, 16)
	_, err := tr.Read(buf)
	assert.Error(t, err)
}

func TestTransformWindowSizeExceeded(t *testing.T) {
	tr := NewTransform(repair.WithWindowSize(4))
	_, err := tr.Write([]byte("12345"))
	require.Error(t, err)

	err = tr.Close()
	var repairErr *repair.Error
	require.ErrorAs(t, err, &repairErr)
	assert.Equal(t, repair.KindBufferExceeded, repairErr.Kind)
}

func TestTransformCloseIsIdempotent(t *testing.T) {
	tr := NewTransform()
	tr.Write([]byte(`42`))
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
}

func TestRepairCopiesReaderToWriter(t *testing.T) {
	r := strings.NewReader(`[1, 2, 3,]`)
	var w bytes.Buffer
	require.NoError(t, Repair(r, &w))
	assert.Equal(t, `[1, 2, 3]`, w.String())
}

func readAll(tr *Transform) ([]byte, error) {
	var out []byte
	buf := make([]byte, 8)
	for {
		n, err := tr.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
	}
}
