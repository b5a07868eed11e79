package workflow

// EligibilityError is returned when the authority may not submit records of
// a workflow at all.
type EligibilityError struct {
	Message string
}

func (e EligibilityError) Error() string {
	return e.Message
}

// ValidationError is returned for a rejected form. Form echoes what was
// submitted so the caller can show it again.
type ValidationError struct {
	Message string
	Form    any
}

func (e ValidationError) Error() string {
	return e.Message
}

// AuthorizationError is returned when the actor may not perform the
// operation on the record.
type AuthorizationError struct {
	Message string
}

func (e AuthorizationError) Error() string {
	return e.Message
}

// ConflictError is returned when the operation would leave two active
// records for the same authority and date.
type ConflictError struct {
	Message string
}

func (e ConflictError) Error() string {
	return e.Message
}

// PartialFailureError is returned when the record was stored but its file
// was not. Record holds the stored record, flagged as incompleto.
type PartialFailureError struct {
	Message string
	Record  any
	Err     error
}

func (e PartialFailureError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e PartialFailureError) Unwrap() error {
	return e.Err
}
