package security

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	// Hosts the OpenAI API is known to serve result images from.
	allowedHosts = []string{
		"oaidalleapiprodscus.blob.core.windows.net",
		"dalleprodsec.blob.core.windows.net",
	}

	ErrPrivateIP     = fmt.Errorf("URL resolves to private IP address")
	ErrUntrustedHost = fmt.Errorf("URL host is not trusted")
	ErrInvalidScheme = fmt.Errorf("only HTTPS URLs are allowed")

	skipValidation = false
)

// SetSkipValidation disables URL checks, for tests that fetch from a
// local httptest server.
func SetSkipValidation(skip bool) {
	skipValidation = skip
}

// ValidateImageURL checks a remote result reference before it is
// fetched. In strict mode only known API result hosts pass.
func ValidateImageURL(rawURL string, strictMode bool) error {
	if skipValidation {
		return nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "https" {
		return ErrInvalidScheme
	}

	host := parsed.Hostname()

	if strictMode && !isAllowedHost(host) {
		return ErrUntrustedHost
	}

	return validateHostIP(host)
}

func isAllowedHost(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func validateHostIP(host string) error {
	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return ErrPrivateIP
		}
		return nil
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		// Unresolvable hosts fail at fetch time with a clearer error.
		return nil
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			return ErrPrivateIP
		}
	}

	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}
