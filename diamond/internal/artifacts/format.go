package artifacts

import (
	"errors"
	"fmt"
	"strings"
)

// Format is the artifact layout of the host toolchain.
type Format string

const (
	FormatHardhat Format = "hardhat"
	FormatFoundry Format = "foundry"

	DefaultFormat = FormatHardhat
)

var ErrUnknownFormat = errors.New("unknown artifact format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHardhat, FormatFoundry:
		return f, nil
	case "":
		return DefaultFormat, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %s or %s)", ErrUnknownFormat, s, FormatHardhat, FormatFoundry)
	}
}

func (f Format) String() string {
	return string(f)
}

// Set and Type make Format usable as a pflag.Value.
func (f *Format) Set(s string) error {
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f *Format) Type() string {
	return "format"
}
