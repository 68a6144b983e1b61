package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
)

var docIDPattern = regexp.MustCompile(`-(\d+)\.aspx$`)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ExtractDocID pulls the numeric document identifier out of a detail-page
// URL like ".../van-ban-12345.aspx". Returns "" when the URL has no id.
func ExtractDocID(rawURL string) string {
	m := docIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}
