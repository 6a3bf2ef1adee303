package node

// Socks5Record is a SOCKS5 proxy with optional username/password auth.
type Socks5Record struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
}

func (*Socks5Record) Protocol() Protocol    { return ProtocolSocks5 }
func (r *Socks5Record) DisplayName() string { return r.Name }
func (*Socks5Record) record()               {}

type socks5Codec struct{}

func (socks5Codec) Protocol() Protocol { return ProtocolSocks5 }

func (socks5Codec) Encode(r Record) (string, error) {
	rec, ok := r.(*Socks5Record)
	if !ok {
		return "", mismatch(ProtocolSocks5, r)
	}
	return encodeAuthLink(ProtocolSocks5, rec.Host, rec.Port, rec.Username, rec.Password, rec.Name), nil
}

// Decode also reads socks:// links.
func (socks5Codec) Decode(link string) (Record, error) {
	parts, err := decodeAuthLink(ProtocolSocks5, link, "socks5", "socks")
	if err != nil {
		return nil, err
	}
	return &Socks5Record{
		Host:     parts.Host,
		Port:     parts.Port,
		Username: parts.Username,
		Password: parts.Password,
		Name:     parts.Hash,
	}, nil
}
