// Package linkurl builds and parses the URL shaped links shared by the node
// codecs. Unlike net/url it normalizes links without a scheme or with a
// proxy scheme (vless://, juicity://) into one flat structure.
package linkurl

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const placeholderScheme = "http"

// schemePattern only matches a scheme at the very start, so a URL nested
// in the path or query is never taken for one.
var schemePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.-]*)://`)

var webSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
}

// Parts is the flat form of a link.
type Parts struct {
	Protocol string
	Username string
	Password string
	Host     string
	Port     int
	Path     string
	// Query is the raw query string, Params its decoded key/value form.
	Query    string
	Params   map[string]string
	File     string
	Hash     string
	Segments []string
}

// Param returns the named parameter or fallback when it is absent or empty.
func (p Parts) Param(key, fallback string) string {
	if v := p.Params[key]; v != "" {
		return v
	}
	return fallback
}

// ParseError reports a link that could not be turned into Parts.
type ParseError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %q: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %q: %s", e.URL, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DefaultPort returns the port assumed when a link omits it.
func DefaultPort(protocol string) int {
	switch protocol {
	case "https", "wss":
		return 443
	default:
		return 80
	}
}

// Build assembles p into a link. Userinfo, path, parameter values and the
// fragment are escaped here, callers pass raw values. Parameter keys are
// written in sorted order.
func Build(p Parts) string {
	protocol := p.Protocol
	if protocol == "" {
		protocol = placeholderScheme
	}

	u := &url.URL{
		Scheme:   protocol,
		Host:     joinHostPort(p.Host, p.Port),
		Path:     p.Path,
		Fragment: p.Hash,
	}
	if u.Path != "" && !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}

	switch {
	case p.Password != "":
		u.User = url.UserPassword(p.Username, p.Password)
	case p.Username != "":
		u.User = url.User(p.Username)
	}

	if len(p.Params) > 0 {
		u.RawQuery = encodeParams(p.Params)
	} else {
		u.RawQuery = p.Query
	}

	return u.String()
}

// Parse splits raw into Parts. A missing scheme is read as http and a
// non web scheme is parsed under a placeholder, then restored in Protocol.
// Links without a host or with an invalid port are rejected.
func Parse(raw string) (Parts, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Parts{}, &ParseError{URL: raw, Reason: "empty link"}
	}

	protocol, rest, found := SplitScheme(raw)
	if !found {
		protocol, rest = placeholderScheme, raw
	}

	rest, rawHash, _ := strings.Cut(rest, "#")

	scheme := protocol
	if !webSchemes[scheme] {
		scheme = placeholderScheme
	}

	u, err := url.Parse(scheme + "://" + rest)
	if err != nil {
		return Parts{}, &ParseError{URL: raw, Reason: "malformed link", Err: err}
	}

	host := u.Hostname()
	if host == "" {
		return Parts{}, &ParseError{URL: raw, Reason: "missing host"}
	}

	port := DefaultPort(protocol)
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return Parts{}, &ParseError{URL: raw, Reason: "invalid port", Err: err}
		}
		if port <= 0 || port > 65535 {
			return Parts{}, &ParseError{URL: raw, Reason: fmt.Sprintf("port %d out of range", port)}
		}
	}

	parts := Parts{
		Protocol: protocol,
		Host:     host,
		Port:     port,
		Path:     u.Path,
		Query:    u.RawQuery,
		Params:   decodeParams(u.RawQuery),
		Hash:     unescapeFragment(rawHash),
	}
	if u.User != nil {
		parts.Username = u.User.Username()
		parts.Password, _ = u.User.Password()
	}
	if trimmed := strings.TrimPrefix(u.Path, "/"); trimmed != "" {
		parts.Segments = strings.Split(trimmed, "/")
		parts.File = parts.Segments[len(parts.Segments)-1]
	}

	return parts, nil
}

// SplitScheme returns the lowercased leading scheme of link and the text
// after "://". found is false when link does not start with a scheme.
func SplitScheme(link string) (scheme, rest string, found bool) {
	loc := schemePattern.FindStringSubmatchIndex(link)
	if loc == nil {
		return "", link, false
	}
	return strings.ToLower(link[loc[2]:loc[3]]), link[loc[1]:], true
}

func joinHostPort(host string, port int) string {
	if port != 0 {
		return net.JoinHostPort(host, strconv.Itoa(port))
	}
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}

func encodeParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

// decodeParams is lenient where url.ParseQuery is not: a pair that fails to
// unescape keeps its raw text and duplicate keys resolve to the last value.
func decodeParams(query string) map[string]string {
	params := make(map[string]string)
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		params[unescape(k)] = unescape(v)
	}
	return params
}

func unescapeFragment(s string) string {
	if d, err := url.PathUnescape(s); err == nil {
		return d
	}
	return s
}

func unescape(s string) string {
	if d, err := url.QueryUnescape(s); err == nil {
		return d
	}
	return s
}
