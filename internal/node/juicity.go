package node

import (
	"node-linker/internal/linkurl"
)

const defaultCongestionControl = "bbr"

type JuicityRecord struct {
	UUID                  string `json:"uuid"`
	Password              string `json:"password"`
	Host                  string `json:"host"`
	Port                  int    `json:"port"`
	CongestionControl     string `json:"congestion_control,omitempty"`
	SNI                   string `json:"sni,omitempty"`
	AllowInsecure         bool   `json:"allow_insecure,omitempty"`
	PinnedCertChainSHA256 string `json:"pinned_certchain_sha256,omitempty"`
	Name                  string `json:"name,omitempty"`
}

func (*JuicityRecord) Protocol() Protocol    { return ProtocolJuicity }
func (r *JuicityRecord) DisplayName() string { return r.Name }
func (*JuicityRecord) record()               {}

type juicityCodec struct{}

func (juicityCodec) Protocol() Protocol { return ProtocolJuicity }

func (juicityCodec) Encode(r Record) (string, error) {
	rec, ok := r.(*JuicityRecord)
	if !ok {
		return "", mismatch(ProtocolJuicity, r)
	}

	params := map[string]string{
		"congestion_control": rec.CongestionControl,
	}
	if params["congestion_control"] == "" {
		params["congestion_control"] = defaultCongestionControl
	}
	if rec.SNI != "" {
		params["sni"] = rec.SNI
	}
	if rec.AllowInsecure {
		params["allow_insecure"] = "1"
	}
	if rec.PinnedCertChainSHA256 != "" {
		params["pinned_certchain_sha256"] = rec.PinnedCertChainSHA256
	}

	return linkurl.Build(linkurl.Parts{
		Protocol: string(ProtocolJuicity),
		Username: rec.UUID,
		Password: rec.Password,
		Host:     rec.Host,
		Port:     rec.Port,
		Params:   params,
		Hash:     rec.Name,
	}), nil
}

func (juicityCodec) Decode(link string) (Record, error) {
	if _, ok := trimScheme(link, string(ProtocolJuicity)); !ok {
		return nil, newDecodeError(ProtocolJuicity, link, ErrWrongScheme)
	}
	parts, err := linkurl.Parse(link)
	if err != nil {
		return nil, newDecodeError(ProtocolJuicity, link, err)
	}

	return &JuicityRecord{
		UUID:                  parts.Username,
		Password:              parts.Password,
		Host:                  parts.Host,
		Port:                  parts.Port,
		CongestionControl:     parts.Param("congestion_control", defaultCongestionControl),
		SNI:                   parts.Params["sni"],
		AllowInsecure:         isTruthy(parts.Params["allow_insecure"]),
		PinnedCertChainSHA256: parts.Params["pinned_certchain_sha256"],
		Name:                  parts.Hash,
	}, nil
}

// isTruthy accepts the two spellings share links use for a set flag.
func isTruthy(v string) bool {
	return v == "true" || v == "1"
}
