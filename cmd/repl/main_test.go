package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestReplEval(t *testing.T) {
	r := newRepl()
	var out bytes.Buffer

	r.eval(&out, "x = 6;")
	r.eval(&out, "y = x++ * 2;")
	got := out.String()
	if !strings.HasSuffix(got, "x=7 y=12 z=0\n") {
		t.Errorf("unexpected output:\n%s", got)
	}

	out.Reset()
	r.eval(&out, "1 = x;")
	if !strings.HasPrefix(out.String(), "Compile Error!\n") {
		t.Errorf("expected the failure indicator, got:\n%s", out.String())
	}

	out.Reset()
	r.eval(&out, "z = y;")
	if !strings.Contains(out.String(), "x=7 y=12 z=12") {
		t.Errorf("session did not survive the error:\n%s", out.String())
	}
}

func TestReplCommands(t *testing.T) {
	r := newRepl()
	var out bytes.Buffer
	r.eval(&out, "x = 1;")

	out.Reset()
	if r.command(&out, ":state") {
		t.Fatal(":state asked to exit")
	}
	if !strings.Contains(out.String(), "x -> r0") {
		t.Errorf(":state output:\n%s", out.String())
	}

	out.Reset()
	r.command(&out, ":program")
	if out.String() != "add r0 r0 1\nstore [0] r0\n" {
		t.Errorf(":program output:\n%s", out.String())
	}

	out.Reset()
	r.command(&out, ":reset")
	r.command(&out, ":vars")
	if !strings.Contains(out.String(), "x=0 y=0 z=0") {
		t.Errorf("values after :reset:\n%s", out.String())
	}

	if !r.command(&out, ":quit") {
		t.Error(":quit did not exit")
	}
}
