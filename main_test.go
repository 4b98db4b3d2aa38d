//go:build !js

package main

import (
	"bytes"
	"strings"
	"testing"

	"exprvm/pkg/compiler"
	"exprvm/pkg/vm"
)

func TestCheckRegisters(t *testing.T) {
	tests := []struct {
		n  int
		ok bool
	}{
		{1, true},
		{compiler.DefaultRegisters, true},
		{256, true},
		{257, false},
		{1024, false},
		{0, false},
		{-4, false},
	}
	for _, tc := range tests {
		err := checkRegisters(tc.n)
		if (err == nil) != tc.ok {
			t.Errorf("checkRegisters(%d) = %v, want ok=%v", tc.n, err, tc.ok)
		}
	}
}

func TestAssembleKeepGoingOutput(t *testing.T) {
	cfg := compiler.DefaultConfig()
	cfg.KeepGoing = true
	var out bytes.Buffer
	err := compiler.NewSession(cfg).CompileStream(strings.NewReader("x = 5;\n1 = 2;\ny = x + 1;\n"), &out)
	if err == nil {
		t.Fatal("expected the compile error to be reported")
	}
	if !strings.Contains(out.String(), compiler.FailureIndicator) {
		t.Fatalf("output has no failure indicator:\n%s", out.String())
	}

	prog, err := assemble(out.Bytes())
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	m := vm.New(vm.DefaultConfig())
	m.Load(prog)
	if err := m.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if x, _ := m.Var(0); x != 5 {
		t.Errorf("x = %d, want 5", x)
	}
	if y, _ := m.Var(1); y != 6 {
		t.Errorf("y = %d, want 6", y)
	}
}

func TestAssembleRejectsGarbage(t *testing.T) {
	if _, err := assemble([]byte("jump r0\n")); err == nil {
		t.Fatal("expected an error for an unknown mnemonic")
	}
}
