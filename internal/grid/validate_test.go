package grid

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_FilledGridIsValid(t *testing.T) {
	if errs := Validate(filledGrid()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_EmptyGrid(t *testing.T) {
	errs := Validate(Grid{})
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	if !fields["center"] {
		t.Fatalf("expected center error, got %v", errs)
	}
	for th := 0; th < ThemeCount; th++ {
		f := "themes[" + string(rune('0'+th)) + "].title"
		if !fields[f] {
			t.Fatalf("expected %s error, got %v", f, errs)
		}
	}
	if !fields["details"] {
		t.Fatalf("expected details error, got %v", errs)
	}
}

func TestValidate_RequiresThirtyTwoDetails(t *testing.T) {
	g := filledGrid()
	// Keep four per theme: exactly the minimum.
	for th := range g.Themes {
		for d := 4; d < DetailCount; d++ {
			g.Themes[th].Details[d] = ""
		}
	}
	if errs := Validate(g); len(errs) != 0 {
		t.Fatalf("expected 32 details to be enough, got %v", errs)
	}

	g.Themes[0].Details[0] = "  "
	errs := Validate(g)
	if len(errs) != 1 || errs[0].Field != "details" {
		t.Fatalf("expected a single details error, got %v", errs)
	}
	if !strings.Contains(errs[0].Reason, "have 31") {
		t.Fatalf("unexpected reason %q", errs[0].Reason)
	}
}

func TestValidate_LengthLimits(t *testing.T) {
	g := filledGrid()
	g.Center = strings.Repeat("目", MaxTitleRunes+1)
	g.Themes[2].Details[3] = strings.Repeat("x", MaxDetailRunes+1)

	errs := Validate(g)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if errs[0].Field != "center" || errs[1].Field != "themes[2].details[3]" {
		t.Fatalf("unexpected fields: %v", errs)
	}

	// Multi-byte text at the limit is fine.
	g = filledGrid()
	g.Center = strings.Repeat("目", MaxTitleRunes)
	if errs := Validate(g); len(errs) != 0 {
		t.Fatalf("expected rune-counted limit, got %v", errs)
	}
}

func TestValidationErrors_Err(t *testing.T) {
	if ValidationErrors(nil).Err() != nil {
		t.Fatalf("expected nil error for no validation errors")
	}
	err := Validate(Grid{}).Err()
	var ves ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "grid: invalid: center: required") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
