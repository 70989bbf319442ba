package errors

var (
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient balance",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "enter a valid amount",
	}
	ErrInvalidPIN = &DomainError{
		Code:    "INVALID_PIN",
		Message: "PIN must be 6 digits",
	}
	ErrIncorrectPIN = &DomainError{
		Code:    "INCORRECT_PIN",
		Message: "your current PIN is incorrect",
	}
	ErrMethodRequired = &DomainError{
		Code:    "METHOD_REQUIRED",
		Message: "choose a method",
	}
	ErrProviderRequired = &DomainError{
		Code:    "PROVIDER_REQUIRED",
		Message: "choose a bank or e-wallet",
	}
	ErrAccountRequired = &DomainError{
		Code:    "ACCOUNT_REQUIRED",
		Message: "enter the destination account number",
	}
	ErrRecipientRequired = &DomainError{
		Code:    "RECIPIENT_REQUIRED",
		Message: "choose a recipient",
	}
	ErrSelfDonation = &DomainError{
		Code:    "SELF_DONATION",
		Message: "you cannot donate to yourself",
	}
	ErrMessageTooLong = &DomainError{
		Code:    "MESSAGE_TOO_LONG",
		Message: "message must be at most 100 characters",
	}
	ErrNotSender = &DomainError{
		Code:    "NOT_SENDER",
		Message: "only the sender can change this donation",
	}
	ErrDonationNotFound = &DomainError{
		Code:    "DONATION_NOT_FOUND",
		Message: "donation not found",
	}
	ErrRecipientNotFound = &DomainError{
		Code:    "RECIPIENT_NOT_FOUND",
		Message: "recipient not found",
	}
	ErrPaymentFailed = &DomainError{
		Code:    "PAYMENT_FAILED",
		Message: "the payment could not be completed",
	}
	ErrGatewayUnavailable = &DomainError{
		Code:    "GATEWAY_UNAVAILABLE",
		Message: "card payments are not configured",
	}
)

// Session and wizard errors.
var (
	ErrNotAuthenticated = &DomainError{
		Code:    "NOT_AUTHENTICATED",
		Message: "you are not signed in",
	}
	ErrSessionExpired = &DomainError{
		Code:    "SESSION_EXPIRED",
		Message: "your session expired, please try again",
	}
	ErrInvalidTransition = &DomainError{
		Code:    "INVALID_TRANSITION",
		Message: "that step is not available right now",
	}
	ErrWizardClosed = &DomainError{
		Code:    "WIZARD_CLOSED",
		Message: "this form has been closed",
	}
	ErrSubmitInProgress = &DomainError{
		Code:    "SUBMIT_IN_PROGRESS",
		Message: "a submission is already in progress",
	}
	ErrNothingToUpdate = &DomainError{
		Code:    "NOTHING_TO_UPDATE",
		Message: "there are no changes to save",
	}
)
