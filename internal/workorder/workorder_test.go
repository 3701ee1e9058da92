package workorder

import "testing"

func TestClassifyVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		prev string
		next string
		want Transition
	}{
		{name: "lowercase closure", prev: "Pendiente", next: "reparado", want: ClosedAsRepaired},
		{name: "title closure", prev: "Pendiente", next: "Reparado", want: ClosedAsRepaired},
		{name: "upper closure", prev: "En curso", next: "REPARADO", want: ClosedAsRepaired},
		{name: "ordinary change", prev: "Pendiente", next: "En curso", want: OtherStatusChange},
		{name: "same stage", prev: "En curso", next: "En curso", want: NoOp},
		{name: "missing previous", prev: "", next: "Reparado", want: NoOp},
		{name: "missing next", prev: "Pendiente", next: "", want: NoOp},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.prev, tt.next); got != tt.want {
				t.Fatalf("Classify(%q, %q) = %v, want %v", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}

func TestClassifierForCustomStage(t *testing.T) {
	t.Parallel()
	c := ClassifierFor("Repaired")
	if got := c.Classify("Pending", "repaired"); got != ClosedAsRepaired {
		t.Fatalf("custom stage: got %v, want ClosedAsRepaired", got)
	}
	if got := c.Classify("Pending", "Reparado"); got != OtherStatusChange {
		t.Fatalf("custom stage should not match default literal: got %v", got)
	}

	// Empty name keeps the default literal.
	c = ClassifierFor("  ")
	if got := c.Classify("Pendiente", "REPARADO"); got != ClosedAsRepaired {
		t.Fatalf("blank custom stage: got %v, want ClosedAsRepaired", got)
	}
}

func TestAttachmentIsImage(t *testing.T) {
	t.Parallel()
	if !(Attachment{Mimetype: "image/png"}).IsImage() {
		t.Fatal("image/png should be an image")
	}
	if !(Attachment{Mimetype: "IMAGE/JPEG"}).IsImage() {
		t.Fatal("mimetype comparison should be case-insensitive")
	}
	if (Attachment{Mimetype: "application/pdf"}).IsImage() {
		t.Fatal("application/pdf is not an image")
	}
	if (Attachment{}).IsImage() {
		t.Fatal("empty mimetype is not an image")
	}
}
