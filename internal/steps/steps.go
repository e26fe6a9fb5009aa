// Package steps maps step indexes of the subscription flow to labels and
// progress markers. All functions are pure; invalid input degrades to an
// empty label or false.
package steps

// Step identifies one stage of the subscription flow.
type Step int

const (
	// Email collects the address the resume link is sent to.
	Email Step = iota
	// Verify confirms ownership of the email address.
	Verify
	// Details collects name and location.
	Details
	// Checkout confirms the selected plan.
	Checkout
	// Payment collects payment for paid plans only.
	Payment
)

var (
	freeLabels = []string{"Email", "Verify Email", "Your Details", "Checkout"}
	paidLabels = []string{"Email", "Verify Email", "Your Details", "Checkout", "Payment"}
)

func labels(paid bool) []string {
	if paid {
		return paidLabels
	}
	return freeLabels
}

// Label returns the label of step for the given plan type, or "" when step
// is out of range.
func Label(step int, paid bool) string {
	l := labels(paid)
	if step < 0 || step >= len(l) {
		return ""
	}
	return l[step]
}

// Total returns the number of steps: 4 for free plans, 5 for paid plans.
func Total(paid bool) int {
	return len(labels(paid))
}

// Final returns the index of the last step for the plan type.
func Final(paid bool) int {
	return Total(paid) - 1
}

// IsFinal reports whether current is the last step index of the plan.
func IsFinal(current int, paid bool) bool {
	return current == Total(paid)-1
}

// IsCompleted reports whether the progress marker stepNumber is done given
// the pointer current. Once the pointer reaches the last index the marker
// numbered total is closed as well.
func IsCompleted(stepNumber, current, total int) bool {
	if stepNumber < current {
		return true
	}
	return current == total-1 && stepNumber == total
}

// IsCurrent reports whether stepNumber is the marker right after the
// pointer. The closing marker of a finished flow is never current.
func IsCurrent(stepNumber, current, total int) bool {
	if stepNumber != current+1 {
		return false
	}
	return !(current == total-1 && stepNumber == total)
}
