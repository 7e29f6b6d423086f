package client

import "encoding/json"

// Credentials are the auth artifacts extracted from a server reply.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
	User         map[string]interface{}
}

// Empty reports whether nothing usable was extracted.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == "" && c.SessionID == "" && c.User == nil
}

// accessTokenKeys and friends are the accepted field spellings, in
// precedence order. Older API builds used the short names.
var (
	accessTokenKeys  = []string{"accessToken", "token"}
	refreshTokenKeys = []string{"refreshToken", "refresh_token"}
	sessionIDKeys    = []string{"sessionId", "session_id"}
)

// ExtractCredentials pulls tokens, session id and user object out of
// a response body. Both envelope shapes are accepted: fields nested
// under "data", and fields at the top level. The nested shape wins
// when both carry a value.
func ExtractCredentials(body []byte) Credentials {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Credentials{}
	}
	return extractCredentials(raw)
}

func extractCredentials(raw map[string]interface{}) Credentials {
	var creds Credentials

	data, _ := raw["data"].(map[string]interface{})

	creds.AccessToken = firstString(data, raw, accessTokenKeys)
	creds.RefreshToken = firstString(data, raw, refreshTokenKeys)
	creds.SessionID = firstString(data, raw, sessionIDKeys)

	if data != nil {
		if u, ok := data["user"].(map[string]interface{}); ok {
			creds.User = u
		}
	}
	if creds.User == nil {
		if u, ok := raw["user"].(map[string]interface{}); ok {
			creds.User = u
		}
	}

	return creds
}

// firstString walks the key synonyms over the nested object first,
// then the flat one, returning the first non-empty string.
func firstString(nested, flat map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if nested != nil {
			if s, ok := nested[key].(string); ok && s != "" {
				return s
			}
		}
	}
	for _, key := range keys {
		if flat != nil {
			if s, ok := flat[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
