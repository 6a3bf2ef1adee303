package xray

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"node-linker/internal/domain"
	"node-linker/internal/node"
)

func testLinks() []domain.ParsedLink {
	return []domain.ParsedLink{
		{
			Name:   "socks",
			Record: &node.Socks5Record{Host: "10.0.0.1", Port: 1080, Username: "u", Password: "p"},
		},
		{
			Name:   "juicity",
			Record: &node.JuicityRecord{UUID: "id", Password: "pw", Host: "j.example.com", Port: 443},
		},
		{
			Name: "vless reality",
			Record: &node.VLESSRecord{
				ID:          "uuid",
				Address:     "reality.example.com",
				Port:        443,
				Net:         "tcp",
				Type:        "none",
				TLS:         "reality",
				SNI:         "www.example.com",
				Flow:        "xtls-rprx-vision",
				Fingerprint: "chrome",
				PublicKey:   "pbk",
				ShortID:     "sid",
			},
		},
		{
			Name: "vmess ws",
			Record: &node.VMessRecord{
				Address: "vmess.example.com",
				Port:    443,
				ID:      "uuid",
				Net:     "ws",
				Host:    "cdn.example.com",
				Path:    "/ray",
				TLS:     "tls",
				ALPN:    "h2,http/1.1",
			},
		},
		{
			Name:   "https",
			Record: &node.HTTPRecord{Scheme: node.ProtocolHTTPS, Host: "proxy.example.com", Port: 443},
		},
	}
}

func TestRender(t *testing.T) {
	s, err := newService(t.TempDir(), 20000, testLinks(), zaptest.NewLogger(t))
	require.NoError(t, err)

	cfg, err := s.Render()
	require.NoError(t, err)

	// juicity has no xray outbound
	require.Len(t, cfg.Inbounds, 4)
	require.Len(t, cfg.Outbounds, 2+4)
	require.Len(t, cfg.Routing.Rules, 4)

	byTag := make(map[string]OutboundConfig)
	for _, o := range cfg.Outbounds {
		byTag[o.Tag] = o
	}

	socks := byTag["outbound-socks"]
	assert.Equal(t, "socks", socks.Protocol)
	assert.JSONEq(t, `{"servers":[{"address":"10.0.0.1","port":1080,"users":[{"user":"u","pass":"p"}]}]}`, string(socks.Settings))
	assert.Nil(t, socks.StreamSettings)

	reality := byTag["outbound-vless+reality"]
	assert.Equal(t, "vless", reality.Protocol)
	assert.JSONEq(t, `{"vnext":[{"address":"reality.example.com","port":443,"users":[{"id":"uuid","encryption":"none","flow":"xtls-rprx-vision"}]}]}`, string(reality.Settings))
	require.NotNil(t, reality.StreamSettings)
	assert.Equal(t, "reality", reality.StreamSettings.Security)
	assert.Equal(t, "pbk", reality.StreamSettings.RealitySettings.PublicKey)
	assert.Equal(t, "none", reality.StreamSettings.TCPSettings.Header.Type)

	vmess := byTag["outbound-vmess+ws"]
	assert.Equal(t, "vmess", vmess.Protocol)
	assert.JSONEq(t, `{"vnext":[{"address":"vmess.example.com","port":443,"users":[{"id":"uuid","alterId":0,"security":"auto"}]}]}`, string(vmess.Settings))
	require.NotNil(t, vmess.StreamSettings.WSSettings)
	assert.Equal(t, "/ray", vmess.StreamSettings.WSSettings.Path)
	assert.Equal(t, map[string]string{"Host": "cdn.example.com"}, vmess.StreamSettings.WSSettings.Headers)
	assert.Equal(t, "cdn.example.com", vmess.StreamSettings.TLSSettings.ServerName)
	assert.Equal(t, []string{"h2", "http/1.1"}, vmess.StreamSettings.TLSSettings.ALPN)

	https := byTag["outbound-https"]
	assert.Equal(t, "http", https.Protocol)
	assert.Equal(t, "tls", https.StreamSettings.Security)

	host, port, err := s.GetProxyConfig("vmess ws")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, 20003, port)

	_, _, err = s.GetProxyConfig("missing")
	assert.Error(t, err)
}

func TestWriteConfig(t *testing.T) {
	dir := t.TempDir()
	s, err := newService(dir, 20000, testLinks(), zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, s.WriteConfig())

	data, err := os.ReadFile(s.ConfigPath())
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Len(t, cfg.Inbounds, 4)
	assert.Equal(t, "warning", cfg.Log.LogLevel)
}

func TestNewServiceValidation(t *testing.T) {
	logger := zaptest.NewLogger(t)
	dup := []domain.ParsedLink{
		{Name: "a", Record: &node.Socks5Record{Host: "h", Port: 1}},
		{Name: "a", Record: &node.Socks5Record{Host: "h", Port: 2}},
	}

	_, err := newService(t.TempDir(), 20000, dup, logger)
	assert.Error(t, err)

	_, err = newService(t.TempDir(), 0, nil, logger)
	assert.Error(t, err)

	_, err = newService(t.TempDir(), 65535, dup[:1], logger)
	assert.NoError(t, err)

	_, err = newService(t.TempDir(), 65535, []domain.ParsedLink{dup[0], {Name: "b", Record: dup[1].Record}}, logger)
	assert.Error(t, err)

	_, err = newService(t.TempDir(), 20000, []domain.ParsedLink{{Name: ""}}, logger)
	assert.Error(t, err)
}
