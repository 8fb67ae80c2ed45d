package store

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnreadable marks a store file that exists but cannot be read or decoded.
// Loads mask it, Check reports it.
var ErrUnreadable = errors.New("store unreadable")

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read store file")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, "decode store file")
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode store file")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create store dir")
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

// checkJSON reports ErrUnreadable for a file that exists but does not decode
// into v. A missing file is fine, it loads as the empty value.
func checkJSON(path string, v interface{}) error {
	err := readJSON(path, v)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return errors.Wrapf(ErrUnreadable, "%s: %v", path, errors.Cause(err))
}
