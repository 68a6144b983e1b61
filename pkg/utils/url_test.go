package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashURL(t *testing.T) {
	hash := HashURL("https://example.com/van-ban-12345.aspx")
	require.Len(t, hash, 64)
	require.Equal(t, hash, HashURL("https://example.com/van-ban-12345.aspx"))
	require.NotEqual(t, hash, HashURL("https://example.com/van-ban-12346.aspx"))
}

func TestExtractDocID(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://example.com/phap-luat/nghi-dinh-100-2019-445919.aspx", "445919"},
		{"https://example.com/van-ban-7.aspx", "7"},
		{"https://example.com/van-ban-7.aspx?lang=en", ""},
		{"https://example.com/tin-tuc/bai-viet.aspx", ""},
		{"https://example.com/", ""},
		{"", ""},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, ExtractDocID(tc.rawURL), "url %q", tc.rawURL)
	}
}

func TestToAbsoluteURL(t *testing.T) {
	base, err := url.Parse("https://example.com/phap-luat/index.aspx")
	require.NoError(t, err)

	abs, err := ToAbsoluteURL(base, "/van-ban-99.aspx")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/van-ban-99.aspx", abs)

	abs, err = ToAbsoluteURL(base, "van-ban-99.aspx")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/phap-luat/van-ban-99.aspx", abs)

	abs, err = ToAbsoluteURL(base, "https://other.com/x.aspx")
	require.NoError(t, err)
	require.Equal(t, "https://other.com/x.aspx", abs)
}
