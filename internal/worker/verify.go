package worker

import (
	"node-linker/internal/domain"
	"node-linker/internal/node"
)

// Verification is the outcome of pushing one link through its codec.
type Verification struct {
	Protocol  node.Protocol
	Canonical string
	Status    string
}

// Verify decodes link, encodes the record and repeats the round trip on
// the canonical link. A link is Valid when the second encoding reproduces
// the first and Unstable when it does not.
func Verify(link string) (Verification, error) {
	v := Verification{Status: domain.StatusInvalid}

	record, err := node.Decode(link)
	if err != nil {
		return v, NewCheckError(StageDecode, "failed to decode link", err)
	}
	v.Protocol = record.Protocol()

	canonical, err := node.Encode(record)
	if err != nil {
		return v, NewCheckError(StageEncode, "failed to encode record", err)
	}
	v.Canonical = canonical

	again, err := node.Decode(canonical)
	if err != nil {
		return v, NewCheckError(StageVerify, "failed to decode canonical link", err)
	}
	second, err := node.Encode(again)
	if err != nil {
		return v, NewCheckError(StageVerify, "failed to encode canonical record", err)
	}

	if second != canonical {
		v.Status = domain.StatusUnstable
		return v, NewCheckError(StageVerify, "round trip changed the link", ErrUnstable)
	}

	v.Status = domain.StatusValid
	return v, nil
}
