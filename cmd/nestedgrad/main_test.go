package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/born-ml/nested/autodiff"
	"github.com/born-ml/nested/backend/cpu"
	"github.com/born-ml/nested/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "nestedgrad "+version+"\n", out)
}

func TestDemos(t *testing.T) {
	out, err := execute(t, "demo", "sumdim", "--workers", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "grad_x   sizes=[[1 3] [2 2]] data=[5 5 5 1 1 2 2]")

	out, err = execute(t, "demo", "linear", "--workers", "4", "--min-chunk", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "grad_W   shape=[2 3] data=[9 12 15 22 26 30]")
	assert.Contains(t, out, "grad_b   shape=[2] data=[3 4]")

	out, err = execute(t, "demo", "reshape")
	require.NoError(t, err)
	assert.Contains(t, out, "grad_x   sizes=[[2 3] [1 3]]")
	assert.Contains(t, out, "shape    [-1 3]")
}

func TestDemoErrors(t *testing.T) {
	_, err := execute(t, "demo", "conv")
	assert.Error(t, err)

	_, err = execute(t, "demo", "sumdim", "--min-chunk", "0", "--workers", "2")
	assert.Error(t, err)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("NESTEDGRAD_WORKERS", "1")
	_, err := execute(t, "demo", "sumdim")
	require.NoError(t, err)
}

func TestRunDemoRecoversPanics(t *testing.T) {
	err := runDemo(&bytes.Buffer{}, cpu.New(), func(_ io.Writer, backend tensor.Backend) error {
		x, err := build([][]int{{2, 2}}, make([]float32, 4))
		if err != nil {
			return err
		}
		autodiff.SumDimBackward(x, nil, []int{-1}, true, x, backend)
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kernel failed")
	assert.Contains(t, err.Error(), "keepdim")
}
