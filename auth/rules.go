package auth

import "github.com/MalcoreHardcore698/authdemo/validation"

var passwordStrength = validation.MustPattern(
	`(?=.*[a-z])(?=.*[A-Z])(?=.*\d).+`,
	"Password must contain lowercase and uppercase letters, and numbers",
)

func emailRules() validation.Rules {
	return validation.Rules{
		Required:        true,
		RequiredMessage: "Email is required",
		Pattern:         validation.EmailPattern("Enter a valid email address"),
	}
}

// LoginRules validates the login form.
func LoginRules() validation.RuleSet {
	return validation.RuleSet{
		"email": emailRules(),
		"password": {
			Required:        true,
			RequiredMessage: "Password is required",
			MinLength:       &validation.Length{Value: 6, Message: "Password must be at least 6 characters long"},
		},
	}
}

// RegisterRules validates the registration form.
func RegisterRules() validation.RuleSet {
	return validation.RuleSet{
		"name": {
			Required:        true,
			RequiredMessage: "Name is required",
			MinLength:       &validation.Length{Value: 2, Message: "Name must be at least 2 characters long"},
			MaxLength:       &validation.Length{Value: 50, Message: "Name must be less than 50 characters"},
		},
		"email": emailRules(),
		"password": {
			Required:        true,
			RequiredMessage: "Password is required",
			MinLength:       &validation.Length{Value: 6, Message: "Password must be at least 6 characters long"},
			MaxLength:       &validation.Length{Value: 100, Message: "Password must be less than 100 characters"},
			Pattern:         passwordStrength,
		},
	}
}

// ForgotPasswordRules validates the forgot-password form.
func ForgotPasswordRules() validation.RuleSet {
	return validation.RuleSet{"email": emailRules()}
}
