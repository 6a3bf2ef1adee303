package xray

import "encoding/json"

// Config structures for XRay
type (
	Config struct {
		Log       LogConfig        `json:"log"`
		Inbounds  []InboundConfig  `json:"inbounds"`
		Outbounds []OutboundConfig `json:"outbounds"`
		Routing   RoutingConfig    `json:"routing"`
	}

	LogConfig struct {
		LogLevel string `json:"loglevel"`
	}

	InboundConfig struct {
		Tag      string         `json:"tag"`
		Listen   string         `json:"listen"`
		Port     int            `json:"port"`
		Protocol string         `json:"protocol"`
		Sniffing SniffingConfig `json:"sniffing"`
	}

	SniffingConfig struct {
		Enabled      bool     `json:"enabled"`
		DestOverride []string `json:"destOverride"`
		RouteOnly    bool     `json:"routeOnly"`
	}

	OutboundConfig struct {
		Tag            string          `json:"tag"`
		Protocol       string          `json:"protocol"`
		Settings       json.RawMessage `json:"settings"`
		StreamSettings *StreamSettings `json:"streamSettings,omitempty"`
	}

	RoutingConfig struct {
		Rules []RoutingRule `json:"rules"`
	}

	RoutingRule struct {
		Type        string `json:"type"`
		InboundTag  string `json:"inboundTag"`
		OutboundTag string `json:"outboundTag"`
	}
)

// Outbound settings
type (
	// serverSettings is shared by the http and socks outbounds.
	serverSettings struct {
		Servers []server `json:"servers"`
	}

	server struct {
		Address string       `json:"address"`
		Port    int          `json:"port"`
		Users   []serverUser `json:"users,omitempty"`
	}

	serverUser struct {
		User string `json:"user"`
		Pass string `json:"pass"`
	}

	vnextSettings struct {
		Vnext []vnext `json:"vnext"`
	}

	vnext struct {
		Address string      `json:"address"`
		Port    int         `json:"port"`
		Users   []vnextUser `json:"users"`
	}

	vnextUser struct {
		ID         string `json:"id"`
		AlterID    *int   `json:"alterId,omitempty"`
		Security   string `json:"security,omitempty"`
		Encryption string `json:"encryption,omitempty"`
		Flow       string `json:"flow,omitempty"`
	}
)

// Stream settings
type (
	StreamSettings struct {
		Network         string           `json:"network"`
		Security        string           `json:"security,omitempty"`
		TLSSettings     *TLSSettings     `json:"tlsSettings,omitempty"`
		RealitySettings *RealitySettings `json:"realitySettings,omitempty"`
		TCPSettings     *TCPSettings     `json:"tcpSettings,omitempty"`
		WSSettings      *WSSettings      `json:"wsSettings,omitempty"`
		GRPCSettings    *GRPCSettings    `json:"grpcSettings,omitempty"`
		KCPSettings     *KCPSettings     `json:"kcpSettings,omitempty"`
		HTTPSettings    *HTTPSettings    `json:"httpSettings,omitempty"`
	}

	TLSSettings struct {
		ServerName    string   `json:"serverName,omitempty"`
		AllowInsecure bool     `json:"allowInsecure"`
		ALPN          []string `json:"alpn,omitempty"`
		Fingerprint   string   `json:"fingerprint,omitempty"`
	}

	RealitySettings struct {
		ServerName  string `json:"serverName,omitempty"`
		Fingerprint string `json:"fingerprint,omitempty"`
		PublicKey   string `json:"publicKey"`
		ShortID     string `json:"shortId,omitempty"`
		SpiderX     string `json:"spiderX,omitempty"`
	}

	TCPSettings struct {
		Header HeaderConfig `json:"header"`
	}

	HeaderConfig struct {
		Type string `json:"type"`
	}

	WSSettings struct {
		Path    string            `json:"path,omitempty"`
		Headers map[string]string `json:"headers,omitempty"`
	}

	GRPCSettings struct {
		ServiceName string `json:"serviceName,omitempty"`
	}

	KCPSettings struct {
		Header HeaderConfig `json:"header"`
		Seed   string       `json:"seed,omitempty"`
	}

	HTTPSettings struct {
		Host []string `json:"host,omitempty"`
		Path string   `json:"path,omitempty"`
	}
)
