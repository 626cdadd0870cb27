package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// goCmd runs a go subcommand with output streamed to the terminal. A failed
// step is reported but does not stop later steps unless fatal is set.
func goCmd(fatal bool, args ...string) {
	cmd := exec.Command("go", args...)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	err := cmd.Run()
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "go %s: %v\n", args[0], err)
	if !fatal {
		return
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		os.Exit(ee.ExitCode())
	}
	os.Exit(1)
}

func main() {
	// Usage: go run ./cmd/benchrun
	fmt.Println("Columns: BENCHMARK  N  ns/op  B/op  allocs/op")
	goCmd(true, "test", "./bench", "-run", "^$", "-bench", ".", "-benchmem", "-benchtime=1s")

	// Geometry perft against dragontoothmg legal perft
	fmt.Println("\nPerft Performance:")
	fmt.Println("TEST \t\tDepth \t\tNodes \t\tTime \tNPS")
	for _, depth := range []string{"3", "4", "5"} {
		goCmd(false, "run", "./cmd/perft", "-depth", depth, "-label", "Initial", "-compare")
	}
	goCmd(false, "run", "./cmd/perft", "-fen",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w - - 0 1",
		"-depth", "3", "-label", "Kiwipete", "-compare")

	// Search throughput with and without quantum branching
	fmt.Println("\nSearch:")
	for _, p := range []string{"0", "0.3", "1"} {
		goCmd(false, "run", "./cmd/searchbench", "-depth", "3", "-repeat", "3", "-p", p)
	}
	goCmd(false, "run", "./cmd/searchbench", "-depth", "2", "-p", "0.3", "-branching", "expected")
}
