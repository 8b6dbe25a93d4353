// Copyright 2026 The Witness Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
)

// VersionString is mixed into the third stage of the key derivation.
const VersionString = "vcode_request_version_1"

// hmacSHA256 returns the raw digest of data keyed with key.
func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	// hash.Hash never returns an error from Write
	_, _ = mac.Write(data)
	return mac.Sum(nil)
}

// HashNonce is the first stage: the decoded secret key signs the decoded nonce.
func HashNonce(key, nonce []byte) []byte {
	return hmacSHA256(key, nonce)
}

// HashTimestamp is the second stage: the nonce digest signs the decimal millisecond timestamp.
func HashTimestamp(nonceDigest []byte, timestamp string) []byte {
	return hmacSHA256(nonceDigest, []byte(timestamp))
}

// HashVersion is the third stage: the timestamp digest signs VersionString.
func HashVersion(timestampDigest []byte) []byte {
	return hmacSHA256(timestampDigest, []byte(VersionString))
}

// HashData is the final stage: the version digest signs the canonical request data.
func HashData(versionDigest []byte, data string) []byte {
	return hmacSHA256(versionDigest, []byte(data))
}

// Signature chains the four stages. Every stage is keyed with the raw bytes of the previous
// digest, which is the same as hex decoding the hex rendering the remote verifier works with.
func Signature(key, nonce []byte, timestamp, data string) []byte {
	k1 := HashNonce(key, nonce)
	k2 := HashTimestamp(k1, timestamp)
	k3 := HashVersion(k2)
	return HashData(k3, data)
}

// CanonicalData builds the string covered by the final stage.
func CanonicalData(id, host, path, method string) string {
	return fmt.Sprintf("id=%s&host=%s&url=%s&method=%s", id, host, path, method)
}
