package node

import (
	"node-linker/internal/linkurl"
)

const (
	defaultNetwork = "tcp"
	none           = "none"
)

type VLESSRecord struct {
	ID      string `json:"id"`
	Address string `json:"add"`
	Port    int    `json:"port"`
	// Net is the transport, Type its header type.
	Net  string `json:"net"`
	Type string `json:"type"`
	// Host is the transport host header, falling back to SNI on decode.
	Host string `json:"host,omitempty"`
	// Path doubles as the grpc service name and the kcp seed.
	Path          string `json:"path,omitempty"`
	TLS           string `json:"tls"`
	SNI           string `json:"sni,omitempty"`
	Flow          string `json:"flow"`
	ALPN          string `json:"alpn,omitempty"`
	AllowInsecure bool   `json:"allowInsecure,omitempty"`
	Fingerprint   string `json:"fp,omitempty"`
	PublicKey     string `json:"pbk,omitempty"`
	ShortID       string `json:"sid,omitempty"`
	SpiderX       string `json:"spx,omitempty"`
	Name          string `json:"ps,omitempty"`
}

func (*VLESSRecord) Protocol() Protocol    { return ProtocolVLESS }
func (r *VLESSRecord) DisplayName() string { return r.Name }
func (*VLESSRecord) record()               {}

type vlessCodec struct{}

func (vlessCodec) Protocol() Protocol { return ProtocolVLESS }

func (vlessCodec) Encode(r Record) (string, error) {
	rec, ok := r.(*VLESSRecord)
	if !ok {
		return "", mismatch(ProtocolVLESS, r)
	}

	params := map[string]string{
		"type":     orDefault(rec.Net, defaultNetwork),
		"security": orDefault(rec.TLS, none),
	}
	setNonEmpty(params, "host", rec.Host)
	setNonEmpty(params, "sni", rec.SNI)
	setNonEmpty(params, "alpn", rec.ALPN)
	setNonEmpty(params, "fp", rec.Fingerprint)
	setNonEmpty(params, "pbk", rec.PublicKey)
	setNonEmpty(params, "sid", rec.ShortID)
	setNonEmpty(params, "spx", rec.SpiderX)
	if rec.Type != none {
		setNonEmpty(params, "headerType", rec.Type)
	}
	if rec.Flow != none {
		setNonEmpty(params, "flow", rec.Flow)
	}
	if rec.AllowInsecure {
		params["allowInsecure"] = "1"
	}

	switch params["type"] {
	case "grpc":
		setNonEmpty(params, "serviceName", rec.Path)
	case "kcp", "mkcp":
		setNonEmpty(params, "seed", rec.Path)
	default:
		setNonEmpty(params, "path", rec.Path)
	}

	return linkurl.Build(linkurl.Parts{
		Protocol: string(ProtocolVLESS),
		Username: rec.ID,
		Host:     rec.Address,
		Port:     rec.Port,
		Params:   params,
		Hash:     rec.Name,
	}), nil
}

func (vlessCodec) Decode(link string) (Record, error) {
	if _, ok := trimScheme(link, string(ProtocolVLESS)); !ok {
		return nil, newDecodeError(ProtocolVLESS, link, ErrWrongScheme)
	}
	parts, err := linkurl.Parse(link)
	if err != nil {
		return nil, newDecodeError(ProtocolVLESS, link, err)
	}

	rec := &VLESSRecord{
		ID:            parts.Username,
		Address:       parts.Host,
		Port:          parts.Port,
		Net:           parts.Param("type", defaultNetwork),
		Type:          parts.Param("headerType", none),
		Host:          parts.Param("host", parts.Params["sni"]),
		TLS:           parts.Param("security", none),
		SNI:           parts.Params["sni"],
		Flow:          parts.Param("flow", none),
		ALPN:          parts.Params["alpn"],
		AllowInsecure: isTruthy(parts.Params["allowInsecure"]),
		Fingerprint:   parts.Params["fp"],
		PublicKey:     parts.Params["pbk"],
		ShortID:       parts.Params["sid"],
		SpiderX:       parts.Params["spx"],
		Name:          parts.Hash,
	}

	switch rec.Net {
	case "grpc":
		rec.Path = parts.Param("serviceName", parts.Params["path"])
	case "kcp", "mkcp":
		rec.Path = parts.Params["seed"]
	default:
		rec.Path = parts.Params["path"]
	}

	return rec, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func setNonEmpty(params map[string]string, key, value string) {
	if value != "" {
		params[key] = value
	}
}
