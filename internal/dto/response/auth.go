package response

type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	// Warning is set when the code was issued but the email could not be delivered.
	Warning string `json:"warning,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
