package steps

import "testing"

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		step int
		paid bool
		want string
	}{
		{"free first", 0, false, "Email"},
		{"free last", 3, false, "Checkout"},
		{"free out of range", 4, false, ""},
		{"paid payment", 4, true, "Payment"},
		{"paid out of range", 5, true, ""},
		{"negative", -1, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.step, tt.paid); got != tt.want {
				t.Errorf("Label(%d, %v) = %q; want %q", tt.step, tt.paid, got, tt.want)
			}
		})
	}
}

func TestTotalAndFinal(t *testing.T) {
	if got := Total(false); got != 4 {
		t.Errorf("Total(false) = %d; want 4", got)
	}
	if got := Total(true); got != 5 {
		t.Errorf("Total(true) = %d; want 5", got)
	}
	if !IsFinal(3, false) || IsFinal(3, true) {
		t.Error("IsFinal(3) should hold only for the free plan")
	}
	if !IsFinal(int(Payment), true) {
		t.Error("Payment should be final for the paid plan")
	}
	if Final(true) != int(Payment) {
		t.Errorf("Final(true) = %d; want %d", Final(true), Payment)
	}
}

func TestMarkersAgreeWithTotal(t *testing.T) {
	for _, paid := range []bool{false, true} {
		total := Total(paid)
		for current := 0; current <= total; current++ {
			currentCount := 0
			for step := 0; step <= total; step++ {
				done := IsCompleted(step, current, total)
				cur := IsCurrent(step, current, total)
				if done && cur {
					t.Errorf("paid=%v current=%d step=%d is both completed and current", paid, current, step)
				}
				if cur {
					currentCount++
				}
			}
			if IsFinal(current, paid) {
				if !IsCompleted(total, current, total) {
					t.Errorf("paid=%v: closing marker not completed at final pointer", paid)
				}
				if currentCount != 0 {
					t.Errorf("paid=%v: final pointer still has a current marker", paid)
				}
			} else if current < total-1 && currentCount != 1 {
				t.Errorf("paid=%v current=%d: %d current markers; want 1", paid, current, currentCount)
			}
		}
	}
}

func TestIsCompleted(t *testing.T) {
	if !IsCompleted(1, 2, 4) {
		t.Error("step behind pointer should be completed")
	}
	if IsCompleted(2, 2, 4) {
		t.Error("step at pointer should not be completed")
	}
	if IsCompleted(4, 2, 4) {
		t.Error("closing marker should stay open before final step")
	}
	if !IsCompleted(4, 3, 4) {
		t.Error("closing marker should be completed at final step")
	}
}

func TestIsCurrent(t *testing.T) {
	if !IsCurrent(3, 2, 5) {
		t.Error("step after pointer should be current")
	}
	if IsCurrent(2, 2, 5) {
		t.Error("pointer itself is not current")
	}
	if IsCurrent(5, 4, 5) {
		t.Error("closing marker is never current")
	}
}
