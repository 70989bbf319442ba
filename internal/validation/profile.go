package validation

import (
	apperrors "donasi/internal/errors"
)

var (
	ErrNewPINRequired = &apperrors.DomainError{
		Code:    "NEW_PIN_REQUIRED",
		Message: "enter a new PIN to change your PIN",
	}
	ErrPINMismatch = &apperrors.DomainError{
		Code:    "PIN_MISMATCH",
		Message: "PIN confirmation does not match",
	}
	ErrAvatarConflict = &apperrors.DomainError{
		Code:    "AVATAR_CONFLICT",
		Message: "choose a new avatar or remove it, not both",
	}
)

// ProfileForm is a profile edit. A nil Name leaves the name unchanged.
type ProfileForm struct {
	Name          *string
	Avatar        *Upload
	ClearAvatar   bool
	CurrentPIN    string
	NewPIN        string
	ConfirmNewPIN string
}

// Empty reports whether the form changes nothing.
func (f ProfileForm) Empty() bool {
	return f.Name == nil && f.Avatar == nil && !f.ClearAvatar &&
		f.CurrentPIN == "" && f.NewPIN == "" && f.ConfirmNewPIN == ""
}

// ValidateProfile checks every field and reports all problems at once.
func ValidateProfile(f ProfileForm) error {
	v := New()

	if f.Name != nil {
		v.Required("name", *f.Name)
	}

	if f.Avatar != nil && f.ClearAvatar {
		v.Add("avatar", ErrAvatarConflict)
	} else {
		v.Merge(ValidateImage("avatar", f.Avatar))
	}

	if f.NewPIN == "" {
		v.Check(f.CurrentPIN == "" && f.ConfirmNewPIN == "", "newPin", ErrNewPINRequired)
		return v.Err()
	}

	v.Merge(ValidatePIN("currentPin", f.CurrentPIN))
	v.Merge(ValidatePIN("newPin", f.NewPIN))
	v.Check(f.ConfirmNewPIN == f.NewPIN, "confirmNewPin", ErrPINMismatch)
	return v.Err()
}
