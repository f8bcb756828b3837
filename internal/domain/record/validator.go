package record

// Validate checks that every required field key is present in the record.
// Values are not inspected. The first absent field in schema order is reported.
func Validate(rec Record, requiredFields []string) error {
	for _, field := range requiredFields {
		if !rec.Has(field) {
			return NewValidationError(field)
		}
	}
	return nil
}
