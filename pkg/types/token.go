package types

// TokenClaimsInfo are the registered claims of a JWT access token, decoded
// without signature verification.
type TokenClaimsInfo struct {
	Subject   string   `json:"sub,omitempty"`
	Issuer    string   `json:"iss,omitempty"`
	Audience  []string `json:"aud,omitzero"`
	ExpiresAt string   `json:"exp,omitempty"`
	IssuedAt  string   `json:"iat,omitempty"`
}

// TokenInfoOutput is the output of apiscout_token_info. The token itself is
// masked.
type TokenInfoOutput struct {
	TokenKey   string           `json:"token_key"`
	Cached     bool             `json:"cached"`
	Expired    bool             `json:"expired"`
	Preview    string           `json:"token_preview,omitempty"`
	TokenType  string           `json:"token_type,omitempty"`
	ExpiresIn  *int             `json:"expires_in,omitempty"`
	ExpiresAt  string           `json:"expires_at,omitempty"`
	ObtainedAt string           `json:"obtained_at,omitempty"`
	Claims     *TokenClaimsInfo `json:"claims,omitempty"`
	Hint       string           `json:"hint,omitempty"`
}

// ClearTokensOutput is the output of apiscout_clear_tokens.
type ClearTokensOutput struct {
	Cleared            bool `json:"cleared"`
	InvalidatedResults int  `json:"invalidated_results"`
}
