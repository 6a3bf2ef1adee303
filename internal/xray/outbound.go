package xray

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"node-linker/internal/domain"
	"node-linker/internal/node"
)

// ErrNoOutbound is returned for nodes xray has no outbound for.
var ErrNoOutbound = errors.New("xray has no outbound for protocol")

func generateOutbound(l domain.ParsedLink, tag string) (OutboundConfig, error) {
	var (
		protocol string
		settings any
		stream   *StreamSettings
	)

	switch r := l.Record.(type) {
	case *node.HTTPRecord:
		protocol = "http"
		settings = authServer(r.Host, r.Port, r.Username, r.Password)
		if r.Protocol() == node.ProtocolHTTPS {
			stream = &StreamSettings{
				Network:     "tcp",
				Security:    "tls",
				TLSSettings: &TLSSettings{ServerName: r.Host},
			}
		}
	case *node.Socks5Record:
		protocol = "socks"
		settings = authServer(r.Host, r.Port, r.Username, r.Password)
	case *node.VLESSRecord:
		protocol = "vless"
		settings = vnextSettings{Vnext: []vnext{{
			Address: r.Address,
			Port:    r.Port,
			Users: []vnextUser{{
				ID:         r.ID,
				Encryption: "none",
				Flow:       flowOf(r.Flow),
			}},
		}}}
		stream = streamSettings(transport{
			net:           r.Net,
			headerType:    r.Type,
			host:          r.Host,
			path:          r.Path,
			security:      r.TLS,
			sni:           r.SNI,
			alpn:          r.ALPN,
			fingerprint:   r.Fingerprint,
			allowInsecure: r.AllowInsecure,
			publicKey:     r.PublicKey,
			shortID:       r.ShortID,
			spiderX:       r.SpiderX,
		})
	case *node.VMessRecord:
		protocol = "vmess"
		aid := r.AlterID
		settings = vnextSettings{Vnext: []vnext{{
			Address: r.Address,
			Port:    r.Port,
			Users: []vnextUser{{
				ID:       r.ID,
				AlterID:  &aid,
				Security: orDefault(r.Security, "auto"),
			}},
		}}}
		stream = streamSettings(transport{
			net:           r.Net,
			headerType:    r.Type,
			host:          r.Host,
			path:          r.Path,
			security:      r.TLS,
			sni:           r.SNI,
			alpn:          r.ALPN,
			fingerprint:   r.Fingerprint,
			allowInsecure: r.AllowInsecure,
		})
	case nil:
		return OutboundConfig{}, fmt.Errorf("link %s has no decoded record", l.Name)
	default:
		return OutboundConfig{}, fmt.Errorf("%w: %s", ErrNoOutbound, l.Protocol())
	}

	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return OutboundConfig{}, fmt.Errorf("failed to marshal %s settings: %w", protocol, err)
	}

	return OutboundConfig{
		Tag:            tag,
		Protocol:       protocol,
		Settings:       settingsJSON,
		StreamSettings: stream,
	}, nil
}

func authServer(host string, port int, username, password string) serverSettings {
	s := server{Address: host, Port: port}
	if username != "" && password != "" {
		s.Users = []serverUser{{User: username, Pass: password}}
	}
	return serverSettings{Servers: []server{s}}
}

type transport struct {
	net           string
	headerType    string
	host          string
	path          string
	security      string
	sni           string
	alpn          string
	fingerprint   string
	allowInsecure bool
	publicKey     string
	shortID       string
	spiderX       string
}

func streamSettings(t transport) *StreamSettings {
	s := &StreamSettings{
		Network: orDefault(t.net, "tcp"),
	}

	switch s.Network {
	case "tcp":
		s.TCPSettings = &TCPSettings{Header: HeaderConfig{Type: orDefault(t.headerType, "none")}}
	case "ws":
		ws := &WSSettings{Path: t.path}
		if t.host != "" {
			ws.Headers = map[string]string{"Host": t.host}
		}
		s.WSSettings = ws
	case "grpc":
		s.GRPCSettings = &GRPCSettings{ServiceName: t.path}
	case "kcp", "mkcp":
		s.Network = "kcp"
		s.KCPSettings = &KCPSettings{
			Header: HeaderConfig{Type: orDefault(t.headerType, "none")},
			Seed:   t.path,
		}
	case "h2", "http":
		s.Network = "http"
		h := &HTTPSettings{Path: t.path}
		if t.host != "" {
			h.Host = strings.Split(t.host, ",")
		}
		s.HTTPSettings = h
	}

	sni := orDefault(t.sni, t.host)
	switch t.security {
	case "tls", "xtls":
		s.Security = "tls"
		tls := &TLSSettings{
			ServerName:    sni,
			AllowInsecure: t.allowInsecure,
			Fingerprint:   t.fingerprint,
		}
		if t.alpn != "" {
			tls.ALPN = strings.Split(t.alpn, ",")
		}
		s.TLSSettings = tls
	case "reality":
		s.Security = "reality"
		s.RealitySettings = &RealitySettings{
			ServerName:  sni,
			Fingerprint: t.fingerprint,
			PublicKey:   t.publicKey,
			ShortID:     t.shortID,
			SpiderX:     t.spiderX,
		}
	default:
		s.Security = "none"
	}

	return s
}

func flowOf(flow string) string {
	if flow == "none" {
		return ""
	}
	return flow
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func getDefaultOutbounds() []OutboundConfig {
	return []OutboundConfig{
		{
			Tag:      "direct",
			Protocol: "freedom",
			Settings: json.RawMessage(`{"domainStrategy":"UseIP"}`),
		},
		{
			Tag:      "block",
			Protocol: "blackhole",
			Settings: json.RawMessage(`{}`),
		},
	}
}
