package node

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const vmessLinkVersion = "2"

var ErrMissingAddress = errors.New("missing server address")

// VMessRecord follows the v2rayN share format, a base64 encoded JSON object.
type VMessRecord struct {
	Version       string `json:"v,omitempty"`
	Name          string `json:"ps,omitempty"`
	Address       string `json:"add"`
	Port          int    `json:"port"`
	ID            string `json:"id"`
	AlterID       int    `json:"aid"`
	Security      string `json:"scy,omitempty"`
	Net           string `json:"net"`
	Type          string `json:"type"`
	Host          string `json:"host,omitempty"`
	Path          string `json:"path,omitempty"`
	TLS           string `json:"tls"`
	SNI           string `json:"sni,omitempty"`
	ALPN          string `json:"alpn,omitempty"`
	Fingerprint   string `json:"fp,omitempty"`
	AllowInsecure bool   `json:"allowInsecure,omitempty"`
	Flow          string `json:"flow,omitempty"`
	// ServerProtocol is the "protocol" field some panels write into the
	// payload. Flow only survives encoding when it is "vless" with xtls.
	ServerProtocol string `json:"protocol,omitempty"`
}

func (*VMessRecord) Protocol() Protocol    { return ProtocolVMess }
func (r *VMessRecord) DisplayName() string { return r.Name }
func (*VMessRecord) record()               {}

// vmessPayload is the JSON layout. Clients disagree on whether numbers are
// quoted, so numeric fields are read through looseString.
type vmessPayload struct {
	V             looseString `json:"v"`
	PS            string      `json:"ps"`
	Add           string      `json:"add"`
	Port          looseString `json:"port"`
	ID            string      `json:"id"`
	Aid           looseString `json:"aid"`
	Scy           string      `json:"scy,omitempty"`
	Net           string      `json:"net"`
	Type          string      `json:"type"`
	Host          string      `json:"host"`
	Path          string      `json:"path"`
	TLS           string      `json:"tls"`
	SNI           string      `json:"sni,omitempty"`
	ALPN          string      `json:"alpn,omitempty"`
	FP            string      `json:"fp,omitempty"`
	AllowInsecure looseString `json:"allowInsecure,omitempty"`
	Flow          string      `json:"flow,omitempty"`
	Protocol      string      `json:"protocol,omitempty"`
}

// looseString decodes JSON strings, numbers and booleans into their text.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var v json.Number
	if err := json.Unmarshal(data, &v); err == nil {
		*s = looseString(v.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("expected string, number or boolean, got %s", data)
	}
	*s = looseString(strconv.FormatBool(b))
	return nil
}

type vmessCodec struct{}

func (vmessCodec) Protocol() Protocol { return ProtocolVMess }

// Encode drops transport fields that do not apply to the record's network
// before serializing: the header type for tcp and kcp, the path unless the
// transport carries one, and flow outside of vless over xtls.
func (vmessCodec) Encode(r Record) (string, error) {
	rec, ok := r.(*VMessRecord)
	if !ok {
		return "", mismatch(ProtocolVMess, r)
	}

	net := orDefault(rec.Net, defaultNetwork)
	payload := vmessPayload{
		V:        looseString(orDefault(rec.Version, vmessLinkVersion)),
		PS:       rec.Name,
		Add:      rec.Address,
		Port:     looseString(strconv.Itoa(rec.Port)),
		ID:       rec.ID,
		Aid:      looseString(strconv.Itoa(rec.AlterID)),
		Scy:      rec.Security,
		Net:      net,
		Type:     rec.Type,
		Host:     rec.Host,
		Path:     rec.Path,
		TLS:      rec.TLS,
		SNI:      rec.SNI,
		ALPN:     rec.ALPN,
		FP:       rec.Fingerprint,
		Flow:     rec.Flow,
		Protocol: rec.ServerProtocol,
	}
	if rec.AllowInsecure {
		payload.AllowInsecure = "true"
	}

	keepPath := false
	switch net {
	case "ws", "h2", "grpc", "kcp":
		keepPath = true
	case "tcp":
		keepPath = rec.Type == "http"
	}
	if net == "tcp" || net == "kcp" {
		payload.Type = ""
	}
	if !keepPath {
		payload.Path = ""
	}
	if !(rec.ServerProtocol == string(ProtocolVLESS) && rec.TLS == "xtls") {
		payload.Flow = ""
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vmess payload: %w", err)
	}
	return "vmess://" + base64.StdEncoding.EncodeToString(data), nil
}

func (vmessCodec) Decode(link string) (Record, error) {
	body, ok := trimScheme(link, string(ProtocolVMess))
	if !ok {
		return nil, newDecodeError(ProtocolVMess, link, ErrWrongScheme)
	}

	raw, err := decodeBase64(body)
	if err != nil {
		return nil, newDecodeError(ProtocolVMess, link, fmt.Errorf("invalid base64: %w", err))
	}

	var payload vmessPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, newDecodeError(ProtocolVMess, link, fmt.Errorf("invalid json: %w", err))
	}
	if payload.Add == "" {
		return nil, newDecodeError(ProtocolVMess, link, ErrMissingAddress)
	}

	port, err := atoiOrZero(string(payload.Port))
	if err != nil {
		return nil, newDecodeError(ProtocolVMess, link, fmt.Errorf("invalid port: %w", err))
	}
	aid, err := atoiOrZero(string(payload.Aid))
	if err != nil {
		return nil, newDecodeError(ProtocolVMess, link, fmt.Errorf("invalid aid: %w", err))
	}

	return &VMessRecord{
		Version:        string(payload.V),
		Name:           payload.PS,
		Address:        payload.Add,
		Port:           port,
		ID:             payload.ID,
		AlterID:        aid,
		Security:       payload.Scy,
		Net:            payload.Net,
		Type:           payload.Type,
		Host:           payload.Host,
		Path:           payload.Path,
		TLS:            payload.TLS,
		SNI:            payload.SNI,
		ALPN:           payload.ALPN,
		Fingerprint:    payload.FP,
		AllowInsecure:  isTruthy(string(payload.AllowInsecure)),
		Flow:           payload.Flow,
		ServerProtocol: payload.Protocol,
	}, nil
}

// decodeBase64 accepts std and url-safe alphabets, padded or not. Links
// pasted through a URL sometimes arrive percent-encoded, so that is undone
// first.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	s = strings.TrimRight(s, "=")

	var firstErr error
	for _, enc := range []*base64.Encoding{base64.RawStdEncoding, base64.RawURLEncoding} {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func atoiOrZero(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
