// Package loginform validates the raw fields of a point-of-sale login form
// before any network traffic is attempted.
//
// Validation is ordered and fail-fast: the first violated rule is reported and
// the remaining rules are not consulted. The rules, in order, are:
//
//  1. the trimmed instance URL is non-empty
//  2. the vendor ID is non-empty
//  3. the vendor ID is an integer
//  4. the username is non-empty
//  5. the password is non-empty
//
// Validate is a pure function and never touches the network or the form.
//
//	fields, err := loginform.Validate(form)
//	if err != nil {
//		var verr *loginform.ValidationError
//		if errors.As(err, &verr) {
//			show(verr.Message)
//		}
//		return
//	}
package loginform
