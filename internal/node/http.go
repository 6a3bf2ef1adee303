package node

import (
	"node-linker/internal/linkurl"
)

// HTTPRecord is a plain or TLS wrapped HTTP proxy.
type HTTPRecord struct {
	// Scheme is ProtocolHTTP or ProtocolHTTPS, empty means http.
	Scheme   Protocol `json:"protocol"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Username string   `json:"username,omitempty"`
	Password string   `json:"password,omitempty"`
	Name     string   `json:"name,omitempty"`
}

func (r *HTTPRecord) Protocol() Protocol {
	if r.Scheme == "" {
		return ProtocolHTTP
	}
	return r.Scheme
}

func (r *HTTPRecord) DisplayName() string { return r.Name }
func (*HTTPRecord) record()               {}

type httpCodec struct {
	scheme Protocol
}

func (c httpCodec) Protocol() Protocol { return c.scheme }

func (c httpCodec) Encode(r Record) (string, error) {
	rec, ok := r.(*HTTPRecord)
	if !ok || rec.Protocol() != c.scheme {
		return "", mismatch(c.scheme, r)
	}
	return encodeAuthLink(c.scheme, rec.Host, rec.Port, rec.Username, rec.Password, rec.Name), nil
}

func (c httpCodec) Decode(link string) (Record, error) {
	parts, err := decodeAuthLink(c.scheme, link, string(c.scheme))
	if err != nil {
		return nil, err
	}
	return &HTTPRecord{
		Scheme:   Protocol(parts.Protocol),
		Host:     parts.Host,
		Port:     parts.Port,
		Username: parts.Username,
		Password: parts.Password,
		Name:     parts.Hash,
	}, nil
}

// encodeAuthLink writes scheme://[user:pass@]host:port#name. Credentials
// are only written as a complete pair.
func encodeAuthLink(scheme Protocol, host string, port int, username, password, name string) string {
	parts := linkurl.Parts{
		Protocol: string(scheme),
		Host:     host,
		Port:     port,
		Hash:     name,
	}
	if username != "" && password != "" {
		parts.Username = username
		parts.Password = password
	}
	return linkurl.Build(parts)
}

func decodeAuthLink(p Protocol, link string, schemes ...string) (linkurl.Parts, error) {
	if _, ok := trimScheme(link, schemes...); !ok {
		return linkurl.Parts{}, newDecodeError(p, link, ErrWrongScheme)
	}
	parts, err := linkurl.Parse(link)
	if err != nil {
		return linkurl.Parts{}, newDecodeError(p, link, err)
	}
	return parts, nil
}
