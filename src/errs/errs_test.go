package errs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsTagTheRightKind(t *testing.T) {
	cases := []struct {
		name string
		err  *CompilerError
		kind Kind
	}{
		{"grammar", NewGrammarViolation(Span{}, "bad token %q", "+"), GrammarViolation},
		{"resource", NewResourceViolation("could not read %q", "a.onu"), ResourceViolation},
		{"agency", NewAgencyViolation("effect %q escaped scope", "broadcasts"), AgencyViolation},
		{"monomorphization", NewMonomorphizationError("no concrete type for %q", "T"), MonomorphizationError},
		{"codegen", NewCodeGenError("unresolvable operand %v", 3), CodeGenError},
		{"ownership", NewOwnershipViolation(Span{}, "use after release: %q", "s"), OwnershipViolation},
		{"conflict", NewBehaviorConflict("collision on %q", "do_thing"), BehaviorConflict},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.kind, c.err.Kind)
		})
	}
}

func TestErrorIncludesSpanWhenValid(t *testing.T) {
	withSpan := NewGrammarViolation(Span{Line: 4, Pos: 2, Valid: true}, "unexpected token")
	assert.Contains(t, withSpan.Error(), "line 4")
	assert.Contains(t, withSpan.Error(), "pos 2")

	withoutSpan := NewResourceViolation("missing file")
	assert.NotContains(t, withoutSpan.Error(), "line")
}

func TestKindStringForUnknownValue(t *testing.T) {
	assert.Equal(t, "UnknownError", Kind(99).String())
}
