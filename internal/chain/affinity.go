package chain

// affinity holds the interaction weight between a left class (row) and a
// right class (column). Rows and columns are ordered P, N, A, B, Terminal.
// The matrix is not symmetric.
var affinity = [NumClasses][NumClasses]uint64{
	{1, 3, 1, 3, 1}, // P
	{5, 1, 0, 1, 1}, // N
	{0, 1, 0, 4, 1}, // A
	{1, 3, 2, 3, 1}, // B
	{1, 1, 1, 1, 1}, // Terminal
}

// Affinity returns the weight of class a interacting with class b on its right.
func Affinity(a, b Class) uint64 {
	return affinity[a][b]
}
