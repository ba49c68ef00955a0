package permission

import "testing"

func TestOf(t *testing.T) {
	if !Of(true).Equal(Permitting) {
		t.Fatal("Of(true) should be Permitting")
	}
	if !Of(false).Equal(Negating) {
		t.Fatal("Of(false) should be Negating")
	}
}

func TestOfIndirect(t *testing.T) {
	if !OfIndirect(true).Equal(PermittingIndirectly) {
		t.Fatal("OfIndirect(true) should be PermittingIndirectly")
	}
	if !OfIndirect(false).Equal(NegatingIndirectly) {
		t.Fatal("OfIndirect(false) should be NegatingIndirectly")
	}
}

func TestSatisfied(t *testing.T) {
	p := Permitting
	if !p.Satisfied() {
		t.Fatal("unconditional permission should be satisfied")
	}
	p = p.WithCondition(func() bool { return false })
	if p.Satisfied() {
		t.Fatal("condition returning false should not be satisfied")
	}
	p = p.WithCondition(func() bool { return true })
	if !p.Satisfied() {
		t.Fatal("condition returning true should be satisfied")
	}
}

func TestEqual(t *testing.T) {
	a := Permitting
	b := Permitting
	if !a.Equal(b) {
		t.Fatal("two Permitting values should be equal")
	}
	arg1, arg2 := "x", "x"
	a = a.WithArg(&arg1)
	b = b.WithArg(&arg2)
	if !a.Equal(b) {
		t.Fatal("equal args should compare equal")
	}
	arg3 := "y"
	c := Permitting.WithArg(&arg3)
	if a.Equal(c) {
		t.Fatal("different args should not compare equal")
	}
	if a.Equal(Negating) {
		t.Fatal("different verdicts should not compare equal")
	}
	// Condition must not affect equality.
	a = a.WithCondition(func() bool { return true })
	if !a.Equal(b) {
		t.Fatal("differing Condition should not affect Equal")
	}
}
