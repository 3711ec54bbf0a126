package lib

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// LoadStatus tells how LoadParams obtained its result
type LoadStatus int

const (
	LoadOK         LoadStatus = iota // file decoded
	LoadMissing                      // no file at path
	LoadMalformed                    // not a JSON object of integers
	LoadUnreadable                   // file exists but could not be read
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadMissing:
		return "missing"
	case LoadMalformed:
		return "malformed"
	case LoadUnreadable:
		return "unreadable"
	}
	return "unknown"
}

// LoadParams reads calibration from a JSON file. The returned Params are always
// usable: on a missing, unreadable or malformed file they are DefaultParams() and
// the status and error say why. Keys absent from a valid file keep their defaults.
func LoadParams(path string) (Params, LoadStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultParams(), LoadMissing, errors.Wrapf(err, "config %s not found", path)
		}
		return DefaultParams(), LoadUnreadable, errors.Wrapf(err, "failed to read config %s", path)
	}

	params := DefaultParams()
	if err := json.Unmarshal(data, &params); err != nil {
		return DefaultParams(), LoadMalformed, errors.Wrapf(err, "failed to decode config %s", path)
	}
	// json.Unmarshal accepts a bare null without touching params
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return DefaultParams(), LoadMalformed, errors.Errorf("config %s is not an object", path)
	}
	return params, LoadOK, nil
}

// SaveParams writes all six fields to path, replacing any existing file
func SaveParams(path string, params Params) error {
	encoded, err := json.MarshalIndent(params, "", "    ")
	if err != nil {
		return errors.Wrap(err, "failed to encode params")
	}
	encoded = append(encoded, '\n')

	cfgFile, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create config %s", path)
	}
	if _, err := cfgFile.Write(encoded); err != nil {
		cfgFile.Close()
		return errors.Wrapf(err, "failed to write config %s", path)
	}
	if err := cfgFile.Close(); err != nil {
		return errors.Wrapf(err, "failed to close config %s", path)
	}
	return nil
}
