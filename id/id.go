// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

// Package id provides short, typo resistant identifiers used to tell
// sessions apart in logs and reports.
package id

import (
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"regexp"
	"strings"

	"github.com/calmh/luhn"
	"github.com/pkg/errors"
)

// ID is the type representing a generated ID.
type ID [16]byte

const (
	// encoded length without padding, 16 bytes give 26 base32 characters
	encodedLen = 26
	// each half of the encoded ID gets a Luhn check character
	groupLen = encodedLen / 2
)

var chunkRe = regexp.MustCompile("(.{7})")

// New generates a new ID from the given input bytes.
func New(data []byte) ID {
	var id ID
	sum := sha256.Sum256(data)
	copy(id[:], sum[:])
	return id
}

// Parse parses the canonical representation of an ID, as returned by String.
// Dashes, spaces, lower case and the lookalike digits 0, 1 and 8 are accepted.
func Parse(s string) (ID, error) {
	var id ID
	if err := id.UnmarshalText([]byte(s)); err != nil {
		return ID{}, err
	}
	return id, nil
}

// String returns the canonical representation of the ID.
func (i ID) String() string {
	ss := base32.StdEncoding.EncodeToString(i[:])
	ss = strings.Trim(ss, "=")

	// Add a Luhn check 'digit' for the ID.
	ss, err := luhnify(ss)
	if err != nil {
		// Should never happen
		panic(err)
	}

	return chunkify(ss)
}

// Equals checks the two given IDs for equality.
func (i ID) Equals(other ID) bool {
	return i == other
}

// MarshalText implements the encoding.TextMarshaler interface.
func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (i *ID) UnmarshalText(bs []byte) error {
	// Convert to the canonical encoding - uppercase, no '=', no chunks, and
	// with any potential typos fixed.
	s := string(bs)
	s = strings.ToUpper(s)
	s = untypeoify(s)
	s = unchunkify(s)

	if len(s) != encodedLen+2 {
		return errors.New("session ID invalid: incorrect length")
	}

	s, err := unluhnify(s)
	if err != nil {
		return err
	}

	dec, err := base32.StdEncoding.DecodeString(s + "======")
	if err != nil {
		return errors.Wrap(err, "session ID invalid")
	}

	copy(i[:], dec)
	return nil
}

// luhnify adds Luhn check digits to both halves of s.
func luhnify(s string) (string, error) {
	if len(s) != encodedLen {
		return "", fmt.Errorf("unsupported string length %d", len(s))
	}

	var b strings.Builder
	for i := 0; i < 2; i++ {
		chunk := s[i*groupLen : (i+1)*groupLen]

		l, err := luhn.Base32.Generate(chunk)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s%c", chunk, l)
	}

	return b.String(), nil
}

// unluhnify removes Luhn check digits from s, validating that they are
// correct.
func unluhnify(s string) (string, error) {
	if len(s) != encodedLen+2 {
		return "", fmt.Errorf("unsupported string length %d", len(s))
	}

	var b strings.Builder
	for i := 0; i < 2; i++ {
		chunk := s[i*(groupLen+1) : (i+1)*(groupLen+1)]

		l, err := luhn.Base32.Generate(chunk[:groupLen])
		if err != nil {
			return "", err
		}
		if rune(chunk[groupLen]) != l {
			return "", errors.New("session ID invalid: check digit incorrect")
		}

		b.WriteString(chunk[:groupLen])
	}

	return b.String(), nil
}

// chunkify splits s into dash separated groups of 7.
func chunkify(s string) string {
	s = chunkRe.ReplaceAllString(s, "$1-")
	return strings.Trim(s, "-")
}

// unchunkify removes all dashes and spaces.
func unchunkify(s string) string {
	s = strings.Replace(s, "-", "", -1)
	return strings.Replace(s, " ", "", -1)
}

// untypeoify replaces digits that are not part of the base32 alphabet with
// their letter lookalikes.
func untypeoify(s string) string {
	s = strings.Replace(s, "0", "O", -1)
	s = strings.Replace(s, "1", "I", -1)
	return strings.Replace(s, "8", "B", -1)
}
