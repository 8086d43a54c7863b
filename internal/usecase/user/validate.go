package user

// Pre-check messages, reported in this order.
const (
	MsgNameFieldRequired  = "The 'name' field is required."
	MsgEmailFieldRequired = "The 'email' field is required."
	MsgAddressesField     = "The 'addresses' field must be an array with at least one address."
)

// ValidateUserInput runs the request pre-check. Every check runs; an empty result means valid.
func ValidateUserInput(in UserInput) []string {
	var errs []string
	if in.Name == "" {
		errs = append(errs, MsgNameFieldRequired)
	}
	if in.Email == "" {
		errs = append(errs, MsgEmailFieldRequired)
	}
	if len(in.Addresses) == 0 {
		errs = append(errs, MsgAddressesField)
	}
	return errs
}
