package main

import (
	"fmt"
	"io"

	"github.com/born-ml/nested/autodiff"
	"github.com/born-ml/nested/nested"
	"github.com/born-ml/nested/tensor"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// demos maps each demo name to its runner.
var demos = map[string]func(w io.Writer, backend tensor.Backend) error{
	"linear":  demoLinear,
	"reshape": demoReshape,
	"sumdim":  demoSumDim,
}

func newDemoCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:       "demo linear|reshape|sumdim",
		Short:     "Run a backward kernel on a built-in ragged example",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"linear", "reshape", "sumdim"},
		RunE: func(cmd *cobra.Command, args []string) error {
			run, ok := demos[args[0]]
			if !ok {
				return errors.Errorf("unknown demo %q", args[0])
			}
			backend, err := backendFromConfig(v)
			if err != nil {
				return err
			}
			return runDemo(cmd.OutOrStdout(), backend, run)
		},
	}
}

// runDemo turns a kernel panic into an error.
func runDemo(w io.Writer, backend tensor.Backend, run func(io.Writer, tensor.Backend) error) (err error) {
	exc := exceptions.Try(func() {
		err = run(w, backend)
	})
	if exc != nil {
		if e, ok := exc.(error); ok {
			return errors.Wrap(e, "kernel failed")
		}
		return errors.Errorf("kernel failed: %v", exc)
	}
	return err
}

func build(rows [][]int, data []float32) (*nested.NestedTensor, error) {
	sizes, err := nested.NewSizeMatrix(rows)
	if err != nil {
		return nil, err
	}
	buffer, err := tensor.FromSlice(data, tensor.Shape{len(data)})
	if err != nil {
		return nil, err
	}
	return nested.Wrap(buffer, sizes), nil
}

func printNested(w io.Writer, label string, nt *nested.NestedTensor) {
	fmt.Fprintf(w, "%-8s sizes=%s data=%v\n", label, nt.SizeMatrix(), tensor.Flat[float32](nt.Buffer()))
}

func printDense(w io.Writer, label string, t *tensor.RawTensor) {
	fmt.Fprintf(w, "%-8s shape=%s data=%v\n", label, t.Shape(), tensor.Flat[float32](t))
}

// demoLinear differentiates y = x·Wᵗ + b for two sequences of 1 and 2 tokens.
func demoLinear(w io.Writer, backend tensor.Backend) error {
	x, err := build([][]int{{1, 3}, {2, 3}}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9})
	if err != nil {
		return err
	}
	weight, err := tensor.FromSlice([]float32{1, 0, 1, 0, 1, 0}, tensor.Shape{2, 3})
	if err != nil {
		return err
	}
	gradY, err := build([][]int{{1, 2}, {2, 2}}, []float32{1, 1, 2, 0, 0, 3})
	if err != nil {
		return err
	}

	grads := autodiff.LinearBackward(x, gradY, weight, autodiff.AllOutputs, backend)
	printNested(w, "input", x)
	printNested(w, "grad_y", gradY)
	printNested(w, "grad_x", grads.Input)
	printDense(w, "grad_W", grads.Weight)
	printDense(w, "grad_b", grads.Bias)
	return nil
}

// demoReshape views a gradient of flattened components back in [n, 3] form.
func demoReshape(w io.Writer, _ tensor.Backend) error {
	x, err := build([][]int{{2, 3}, {1, 3}}, make([]float32, 9))
	if err != nil {
		return err
	}
	gradY, err := build([][]int{{6}, {3}}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9})
	if err != nil {
		return err
	}

	gradX := autodiff.ReshapeBackward(x, gradY)
	printNested(w, "grad_y", gradY)
	printNested(w, "grad_x", gradX)
	fmt.Fprintf(w, "%-8s %v\n", "shape", gradX.OptSizes())
	return nil
}

// demoSumDim broadcasts per-row sums back over ragged rows.
func demoSumDim(w io.Writer, backend tensor.Backend) error {
	x, err := build([][]int{{1, 3}, {2, 2}}, make([]float32, 7))
	if err != nil {
		return err
	}
	gradY, err := build([][]int{{1}, {2}}, []float32{5, 1, 2})
	if err != nil {
		return err
	}

	gradX := autodiff.SumDimBackward(gradY, nil, []int{-1}, false, x, backend)
	printNested(w, "grad_y", gradY)
	printNested(w, "grad_x", gradX)
	return nil
}
