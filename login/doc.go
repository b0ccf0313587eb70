// Package login drives a single POS login attempt from form submission to a
// terminal outcome.
//
// A Controller validates the form (package loginform), normalizes the
// instance URL (package urlutil), then hands the credentials to an AuthClient
// on a background goroutine. Progress is published as immutable State values
// through a Store:
//
//	Idle -> InFlight -> Succeeded
//	                 -> Failed(message)
//
// Validation and URL failures move straight from Idle to Failed without any
// network traffic. A new Submit restarts the cycle and discards the previous
// terminal state. A Submit made while an attempt is in flight is rejected with
// ErrAttemptInFlight and leaves the state untouched.
//
// The presentation layer observes the attempt either by polling State or by
// ranging over a Subscribe channel:
//
//	updates, cancel := ctrl.Subscribe()
//	defer cancel()
//	for st := range updates {
//		render(st.InProgress(), st.ErrorMessage())
//		if st.Succeeded() {
//			navigateToCheckout()
//		}
//	}
package login
