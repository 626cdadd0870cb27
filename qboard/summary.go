package qboard

// Summary describes the quantum part of a board in circuit vocabulary. Each
// superposed square stands for five conceptual qubits (three for kind, one
// for color, one for the superposition flag).
type Summary struct {
	SuperposedSquares int
	Superpositions    int
	Entanglements     int
	Qubits            int
	CircuitDepth      int
	GateCount         int
}

const (
	qubitsPerSquare       = 5
	gatesPerSuperposition = 6 // encoding X gates, RY, measure
	gatesPerEntanglement  = 4 // CNOT plus controlled phase
)

// Summarize counts superpositions and links and estimates circuit size.
func (b Board) Summarize() Summary {
	s := Summary{Superpositions: len(b.groups), Entanglements: len(b.links)}
	for _, g := range b.groups {
		s.SuperposedSquares += len(g.Hypotheses)
	}
	s.Qubits = s.SuperposedSquares * qubitsPerSquare
	s.GateCount = s.SuperposedSquares*gatesPerSuperposition + s.Entanglements*gatesPerEntanglement
	s.CircuitDepth = s.Superpositions + 2*s.Entanglements
	if s.CircuitDepth < 1 {
		s.CircuitDepth = 1
	}
	return s
}
