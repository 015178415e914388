package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"net/url"
	"strings"
)

// computeSignature builds the base64 HMAC-SHA1 digest Twilio sends in the
// X-Twilio-Signature header: the full request URL followed by every POST
// parameter, sorted by key, with each key immediately followed by its value.
func computeSignature(authToken string, requestURL string, params url.Values) string {
	var b strings.Builder
	b.WriteString(requestURL)
	for _, k := range sortedKeys(params) {
		for _, v := range params[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
