package errors

import (
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "invalid grid spec",
			err:  NewInvalidGridSpecError(0, -1, "random draw count must be positive"),
			want: []string{"invalid grid spec", "length=0", "random=-1"},
		},
		{
			name: "fit failure",
			err:  NewFitFailureError("KNN{k=3}", 2, New("boom")),
			want: []string{"KNN{k=3}", "iteration 2", "boom"},
		},
		{
			name: "no viable candidate",
			err:  NewNoViableCandidateError("rmse", []string{"a", "b"}),
			want: []string{"no viable candidate", "rmse", "2 candidates"},
		},
		{
			name: "response mismatch",
			err:  NewResponseTypeMismatchError("LinReg", "class", []string{"numeric"}),
			want: []string{"LinReg", "class", "numeric"},
		},
		{
			name: "insufficient base learners",
			err:  NewInsufficientBaseLearnersError("stacked model", 1),
			want: []string{"stacked model", "at least 2", "got 1"},
		},
		{
			name: "dimension",
			err:  NewDimensionError("Predict", 4, 3, 1),
			want: []string{"Predict", "Expected 4", "got 3", "features"},
		},
		{
			name: "value",
			err:  NewValueError("Splits", "proportion must be in (0, 1)"),
			want: []string{"Splits", "proportion"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			if !strings.HasPrefix(msg, "machineshop: ") {
				t.Errorf("message %q lacks the library prefix", msg)
			}
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("message %q does not contain %q", msg, want)
				}
			}
		})
	}
}

func TestErrorsAs(t *testing.T) {
	wrapped := Wrap(NewFitFailureError("x", 0, New("cause")), "outer context")
	var fitErr *FitFailureError
	if !As(wrapped, &fitErr) {
		t.Fatal("As() failed to find FitFailureError through a wrap")
	}
	if fitErr.CandidateID != "x" {
		t.Errorf("CandidateID = %q, want x", fitErr.CandidateID)
	}
}

func TestFitFailureUnwrap(t *testing.T) {
	cause := NewValueError("inner", "bad input")
	err := NewFitFailureError("c", 1, cause)
	var valueErr *ValueError
	if !As(err, &valueErr) {
		t.Fatal("As() failed to reach the cell failure cause")
	}
}

func TestWarningHandler(t *testing.T) {
	var captured []error
	SetWarningHandler(func(w error) { captured = append(captured, w) })
	defer SetWarningHandler(nil)

	warning := NewValueError("cell", "degenerate metric")
	Warn(warning)
	if len(captured) != 1 {
		t.Fatalf("handler received %d warnings, want 1", len(captured))
	}
	if captured[0] != warning {
		t.Error("handler received a different warning than the one reported")
	}
}

func TestZerologWarnFuncTakesPrecedence(t *testing.T) {
	var viaHandler, viaSink int
	SetWarningHandler(func(error) { viaHandler++ })
	SetZerologWarnFunc(func(error) { viaSink++ })
	defer func() {
		SetWarningHandler(nil)
		SetZerologWarnFunc(nil)
	}()

	Warn(New("w"))
	if viaSink != 1 || viaHandler != 0 {
		t.Errorf("sink/handler counts = %d/%d, want 1/0", viaSink, viaHandler)
	}
}

func TestSafeExecute(t *testing.T) {
	if err := SafeExecute("ok", func() error { return nil }); err != nil {
		t.Fatalf("SafeExecute() = %v, want nil", err)
	}

	sentinel := New("plain failure")
	if err := SafeExecute("fail", func() error { return sentinel }); !Is(err, sentinel) {
		t.Fatalf("SafeExecute() = %v, want the returned error", err)
	}

	err := SafeExecute("panic", func() error { panic("model backend blew up") })
	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatalf("SafeExecute() = %v, want PanicError", err)
	}
	if panicErr.Operation != "panic" {
		t.Errorf("Operation = %q, want the operation name", panicErr.Operation)
	}
	if !strings.Contains(panicErr.Error(), "model backend blew up") {
		t.Errorf("Error() = %q lacks the panic value", panicErr.Error())
	}
	if panicErr.StackTrace == "" {
		t.Error("PanicError carries no stack trace")
	}
}
