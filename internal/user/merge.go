package user

// Merge applies a partial update to an existing user. Every non-nil field of
// requested wins; the id always comes from existing.
func Merge(existing User, requested Patch) User {
	merged := existing

	if requested.FirstName != nil {
		merged.FirstName = *requested.FirstName
	}
	if requested.LastName != nil {
		merged.LastName = *requested.LastName
	}
	if requested.Email != nil {
		merged.Email = *requested.Email
	}
	if requested.BirthDate != nil {
		merged.BirthDate = *requested.BirthDate
	}
	if requested.Address != nil {
		merged.Address = requested.Address
	}
	if requested.PhoneNumber != nil {
		merged.PhoneNumber = requested.PhoneNumber
	}

	return merged
}
