package tensor

// Backend defines the dense tensor algebra the nested backward kernels rely on.
// Backends handle the actual computation; the kernels only do shape bookkeeping.
//
// Implementations:
//   - CPU: Pure Go with gonum BLAS for floating types
//
// Every method treats its inputs as read-only and returns a new tensor
// (Reshape may return a view sharing storage with its input).
type Backend interface {
	// MatMul performs 2-D matrix multiplication: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// Transpose permutes dimensions (reverses them when axes is empty).
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Reshape reinterprets t under newShape without moving elements.
	// At most one entry may be -1, in which case it is inferred.
	Reshape(t *RawTensor, newShape Shape) *RawTensor

	// SumDim sums along dim (negative dims count from the end).
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
