package utils

import (
	"crypto/rand"
	"encoding/base64"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,16}$`)

// GenerateSecureToken returns length random bytes, base64url encoded.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ObjectKey builds an unguessable storage key under prefix, keeping the
// file's extension when it is a plain one.
func ObjectKey(prefix, filename string) (string, error) {
	token, err := GenerateSecureToken(24)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return path.Join(prefix, token+ext), nil
}
