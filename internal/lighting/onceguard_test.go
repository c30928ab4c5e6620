package lighting

import "testing"

func TestOnceGuard(t *testing.T) {
	g := NewOnceGuard()

	if !g.ShouldApply("light.desk") {
		t.Error("fresh entity should be applied")
	}

	g.MarkApplied("light.desk")
	if g.ShouldApply("light.desk") {
		t.Error("marked entity should not be applied again")
	}

	// Other entities are tracked independently
	if !g.ShouldApply("light.shelf") {
		t.Error("untracked entity should be applied")
	}

	g.Reset("light.desk")
	if !g.ShouldApply("light.desk") {
		t.Error("reset entity should be applied again")
	}
}
