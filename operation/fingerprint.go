package operation

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

const operationKey = "operation"

// Canonical serialises the request with keys sorted so parameter order never changes the result.
// Bare flags serialise as null.
func Canonical(r Request) (string, error) {
	fields := make(map[string]*string, len(r.Parameters)+1)
	for k, v := range r.Parameters {
		fields[k] = v
	}
	op := string(r.Operation)
	fields[operationKey] = &op

	// encoding/json writes map keys in sorted order
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to serialise parameters: %w", err)
	}
	return fmt.Sprintf("%s:%s", b, r.SourceFile), nil
}

// Fingerprint is the hex MD5 digest of the canonical form; it is a dedup key, not a security boundary.
func Fingerprint(r Request) (string, error) {
	canonical, err := Canonical(r)
	if err != nil {
		return "", err
	}
	sum := md5.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:]), nil
}
