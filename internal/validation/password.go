package validation

// ValidatePassword enforces what bcrypt can store.
// bcrypt silently truncates passwords longer than 72 bytes.
func ValidatePassword(password string) error {
	if password == "" {
		return Errors{"password": "This field is required."}
	}

	if len(password) > 72 {
		return Errors{"password": "Must be at most 72 bytes."}
	}

	return nil
}
