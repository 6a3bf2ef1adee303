// Package node converts proxy node records to and from their share links.
//
// Every supported protocol has a Codec. Records form a closed set: the
// concrete types in this package are the only implementations of Record.
package node

import (
	"sort"
	"strings"

	"node-linker/internal/linkurl"
)

type Protocol string

const (
	ProtocolHTTP         Protocol = "http"
	ProtocolHTTPS        Protocol = "https"
	ProtocolSocks5       Protocol = "socks5"
	ProtocolVMess        Protocol = "vmess"
	ProtocolVLESS        Protocol = "vless"
	ProtocolJuicity      Protocol = "juicity"
	ProtocolShadowsocks  Protocol = "shadowsocks"
	ProtocolShadowsocksR Protocol = "shadowsocksR"
	ProtocolTrojan       Protocol = "trojan"
	ProtocolTuic         Protocol = "tuic"
)

// Record is one node configuration.
type Record interface {
	Protocol() Protocol
	DisplayName() string
	record()
}

// Codec converts between a Record and its link.
type Codec interface {
	Protocol() Protocol
	Encode(Record) (string, error)
	Decode(link string) (Record, error)
}

var codecs = map[Protocol]Codec{
	ProtocolHTTP:    httpCodec{scheme: ProtocolHTTP},
	ProtocolHTTPS:   httpCodec{scheme: ProtocolHTTPS},
	ProtocolSocks5:  socks5Codec{},
	ProtocolVMess:   vmessCodec{},
	ProtocolVLESS:   vlessCodec{},
	ProtocolJuicity: juicityCodec{},
}

// schemeAliases maps link schemes that are not protocol tags.
var schemeAliases = map[string]Protocol{
	"socks": ProtocolSocks5,
	"ss":    ProtocolShadowsocks,
	"ssr":   ProtocolShadowsocksR,
}

// Lookup returns the codec registered for p.
func Lookup(p Protocol) (Codec, error) {
	c, ok := codecs[p]
	if !ok {
		return nil, &UnsupportedProtocolError{Protocol: p}
	}
	return c, nil
}

// Protocols lists the protocols that have a codec, sorted.
func Protocols() []Protocol {
	out := make([]Protocol, 0, len(codecs))
	for p := range codecs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Encode renders r with the codec of its protocol.
func Encode(r Record) (string, error) {
	c, err := Lookup(r.Protocol())
	if err != nil {
		return "", err
	}
	return c.Encode(r)
}

// Decode picks the codec from the scheme of link.
func Decode(link string) (Record, error) {
	p, err := SchemeOf(link)
	if err != nil {
		return nil, err
	}
	return DecodeAs(p, link)
}

// DecodeAs decodes link with the codec for p regardless of its scheme.
func DecodeAs(p Protocol, link string) (Record, error) {
	c, err := Lookup(p)
	if err != nil {
		return nil, err
	}
	return c.Decode(link)
}

// SchemeOf returns the protocol named by the scheme of link.
func SchemeOf(link string) (Protocol, error) {
	scheme, _, found := linkurl.SplitScheme(strings.TrimSpace(link))
	if !found {
		return "", &DecodeError{Link: link, Err: ErrMissingScheme}
	}
	if alias, ok := schemeAliases[scheme]; ok {
		return alias, nil
	}
	return Protocol(scheme), nil
}

// trimScheme strips the scheme prefix of link when it is one of accepted.
func trimScheme(link string, accepted ...string) (string, bool) {
	scheme, rest, found := linkurl.SplitScheme(strings.TrimSpace(link))
	if !found {
		return "", false
	}
	for _, a := range accepted {
		if strings.EqualFold(scheme, a) {
			return rest, true
		}
	}
	return "", false
}
