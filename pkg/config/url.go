package config

import (
	"strconv"
	"strings"

	"github.com/esclient-go/esclient/pkg/clienterr"
)

// VerifyURLSchema lowercases url and checks that it has an http or https
// scheme and a numeric port, adding the scheme's default port when none is
// given.
//
//	VerifyURLSchema("https://127.0.0.1")      // "https://127.0.0.1:443"
//	VerifyURLSchema("http://es01:9200")       // "http://es01:9200"
//	VerifyURLSchema("ftp://x")                // ConfigurationError
func VerifyURLSchema(url string) (string, error) {
	return normalizeURL(url, 0)
}

// NormalizeHost is VerifyURLSchema with port used in place of the scheme
// default when it is positive.
func NormalizeHost(url string, port int) (string, error) {
	return normalizeURL(url, port)
}

func normalizeURL(url string, port int) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(url))
	parts := strings.Split(lower, ":")

	switch {
	case len(parts) < 3:
		scheme := parts[0]
		if port <= 0 {
			switch scheme {
			case "http":
				port = DefaultHTTPPort
			case "https":
				port = DefaultHTTPSPort
			}
		}
		if (scheme != "http" && scheme != "https") || len(parts) != 2 {
			return "", invalidURL(url)
		}
		host, path, err := splitAuthority(parts[1], url)
		if err != nil {
			return "", err
		}
		return scheme + "://" + host + ":" + strconv.Itoa(port) + path, nil

	case len(parts) == 3:
		scheme := parts[0]
		if scheme != "http" && scheme != "https" {
			return "", invalidURL(url)
		}
		if _, _, err := splitAuthority(parts[1], url); err != nil {
			return "", err
		}
		portText, _, _ := strings.Cut(parts[2], "/")
		n, err := strconv.Atoi(portText)
		if err != nil || n < 1 || n > 65535 {
			return "", invalidURL(url)
		}
		return lower, nil

	default:
		return "", invalidURL(url)
	}
}

// splitAuthority takes the text after "scheme:" and returns the host and any
// trailing path.
func splitAuthority(rest, original string) (host, path string, err error) {
	after, ok := strings.CutPrefix(rest, "//")
	if !ok {
		return "", "", invalidURL(original)
	}
	host, path, _ = strings.Cut(after, "/")
	if host == "" {
		return "", "", invalidURL(original)
	}
	if path != "" {
		path = "/" + path
	}
	return host, path, nil
}

func invalidURL(url string) error {
	return clienterr.Configf("URL Schema invalid for %s", url)
}
